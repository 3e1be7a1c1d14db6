package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// AuthHeader is the header the gateway reads the token from.
const AuthHeader = "Authorization"

// Client performs calls against a pmsgate server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()

	c := &Client{
		config: &Config{
			Endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
			Token:    cfg.Token,
		},
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the normalized gateway URL.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, user, password string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{"user": user, "password": password})
	if err != nil {
		return nil, fmt.Errorf("encode login: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/login", body, false)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	token, err := ExtractToken(raw)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Token: token, Raw: raw}, nil
}

// ExtractToken returns the session token from a login result: either the
// result itself when it is a JSON string, or its "token" member.
func ExtractToken(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", ErrNoToken
		}
		return s, nil
	}

	var obj struct {
		Token *string `json:"token"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil || obj.Token == nil || *obj.Token == "" {
		return "", ErrNoToken
	}
	return *obj.Token, nil
}

// ForgotPassword starts a password reset for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/password_forgot", body, false)
}

// ResetPassword completes a password reset.
func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]string{"token": resetToken, "password": password})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/password_reset", body, false)
}

// Get fetches path with the configured token.
func (c *Client) Get(ctx context.Context, path string) (*CallResult, error) {
	return c.Send(ctx, http.MethodGet, path, nil)
}

// Send issues method against path with an optional JSON body and the
// configured token.
func (c *Client) Send(ctx context.Context, method, path string, body json.RawMessage) (*CallResult, error) {
	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}
	if body != nil && !json.Valid(body) {
		return nil, ErrInvalidJSON
	}
	if err := c.config.ValidateWithAuth(); err != nil {
		return nil, err
	}

	method = strings.ToUpper(method)
	raw, err := c.do(ctx, method, path, body, true)
	if err != nil {
		return nil, err
	}

	return &CallResult{Method: method, Path: path, Status: http.StatusOK, Body: raw}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, withToken bool) (json.RawMessage, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.Endpoint+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if withToken {
		req.Header.Set(AuthHeader, c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp.StatusCode, data)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("response is not valid JSON: %q", truncate(string(data), 80))
	}

	return json.RawMessage(bytes.TrimSpace(data)), nil
}

// normalizePath requires an absolute route path.
func normalizePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrEmptyPath
	}
	if !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return path, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// parseServerError extracts the error message from a gateway response.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var env errorResponse
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Message = env.Error
	}

	return apiErr
}

// APIError represents an error response from the gateway.
type APIError struct {
	StatusCode int
	// Message is the "error" member of the response envelope, when present.
	Message string
	Body    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + msg
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrBadRequest is returned for malformed input or a store-side rejection (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}

	// ErrUnauthorized is returned when the credential header is missing (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrNotFound is returned when the procedure returned nothing or the
	// route does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}
)
