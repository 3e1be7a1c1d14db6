package http

import (
	"context"
	"net/http"
)

// DefaultAuthHeader carries the caller's token.
const DefaultAuthHeader = "Authorization"

// AuthKind is the outcome of inspecting a request's credential header.
type AuthKind int

const (
	// Authenticated means the request carries exactly one credential value.
	Authenticated AuthKind = iota + 1
	// Rejected means the header is missing or repeated.
	Rejected
	// Skip means the value is the configured bypass token; the route must not run.
	Skip
)

func (k AuthKind) String() string {
	switch k {
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	case Skip:
		return "skip"
	default:
		return "unknown"
	}
}

// AuthResult is Authenticated(Token), Rejected(Status) or Skip.
type AuthResult struct {
	Kind   AuthKind
	Token  string
	Status int
}

// AuthConfig controls credential extraction.
type AuthConfig struct {
	// Header is the credential header name; DefaultAuthHeader when empty.
	Header string `mapstructure:"header"`
	// BypassToken, when non-empty, is a debug value that makes protected routes
	// fall through to the not-found handler instead of running. Empty disables it.
	BypassToken string `mapstructure:"bypass_token"`
}

func (c AuthConfig) header() string {
	if c.Header == "" {
		return DefaultAuthHeader
	}
	return c.Header
}

// ExtractAuth inspects the credential header. It has no side effects and never
// looks at the token beyond comparing it with the bypass value.
func ExtractAuth(h http.Header, cfg AuthConfig) AuthResult {
	values := h.Values(cfg.header())
	if len(values) != 1 {
		return AuthResult{Kind: Rejected, Status: http.StatusUnauthorized}
	}

	if cfg.BypassToken != "" && values[0] == cfg.BypassToken {
		return AuthResult{Kind: Skip}
	}

	return AuthResult{Kind: Authenticated, Token: values[0]}
}

type tokenKey struct{}

// ContextWithToken returns a context carrying the caller's token.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token stored by AuthMiddleware.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok
}

// AuthMiddleware runs ExtractAuth before a protected route. Rejected requests
// are answered with the Unauthorized catch-all; skipped requests are handed to skip.
func AuthMiddleware(cfg AuthConfig, skip http.Handler) func(http.Handler) http.Handler {
	if skip == nil {
		skip = http.HandlerFunc(NotFound)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := ExtractAuth(r.Header, cfg)
			switch res.Kind {
			case Authenticated:
				next.ServeHTTP(w, r.WithContext(ContextWithToken(r.Context(), res.Token)))
			case Skip:
				skip.ServeHTTP(w, r)
			default:
				Unauthorized(w, r)
			}
		})
	}
}
