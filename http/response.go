package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sagarc03/pmsgate"
)

// Fixed messages of the catch-all responses.
const (
	MessageBadRequest   = "An error occurred on the server"
	MessageUnauthorized = "No Authorization header found"
	MessageNotFound     = "Resource not found"
	MessageInternal     = "Internal server error"
	// MessageNoAccess is what every route reports when its procedure returns nothing.
	MessageNoAccess = "Id not found (or no read access)"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes the envelope err classifies to and logs it through
// logger, or slog.Default when logger is nil.
func HandleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	e := pmsgate.Classify(err)

	attrs := []any{
		"kind", e.Kind.String(),
		"status", e.Status,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", RequestIDFromContext(r.Context()),
		"error", err,
	}
	switch e.Kind {
	case pmsgate.KindTransport:
		logger.ErrorContext(r.Context(), "request failed", attrs...)
	case pmsgate.KindApplication, pmsgate.KindValidation:
		logger.WarnContext(r.Context(), "request rejected", attrs...)
	default:
		logger.DebugContext(r.Context(), "request rejected", attrs...)
	}

	WriteError(w, e.Status, e.Message)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

// Unauthorized is the catch-all for requests without a usable credential header.
func Unauthorized(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusUnauthorized, MessageUnauthorized)
}

// NotFound is the catch-all for requests no route serves.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, MessageNotFound)
}
