package clientcli

import "encoding/json"

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User  string          `json:"user"`
	Token string          `json:"token"`
	Raw   json.RawMessage `json:"result"`
}

// CallResult is the JSON value a route returned.
type CallResult struct {
	Method string          `json:"method"`
	Path   string          `json:"path"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// errorResponse mirrors the gateway's error envelope.
type errorResponse struct {
	Error string `json:"error"`
}
