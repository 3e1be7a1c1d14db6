package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sagarc03/pmsgate"
)

// DefaultMaxBodySize bounds request bodies when HandlerConfig.MaxBodySize is zero.
const DefaultMaxBodySize = 1 << 20

// Invoker runs a procedure call. *pmsgate.Invoker implements it.
type Invoker interface {
	Invoke(ctx context.Context, call pmsgate.ProcedureCall) (json.RawMessage, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Auth        AuthConfig
	CORS        CORSConfig
	MaxBodySize int64
	// Routes overrides the route table; Routes() when nil.
	Routes []Route
	Logger *slog.Logger
}

// Handler dispatches requests to procedure calls.
type Handler struct {
	config  HandlerConfig
	invoker Invoker
}

// NewHandler creates a new Handler with the given configuration and invoker.
func NewHandler(config *HandlerConfig, invoker Invoker) *Handler {
	h := &Handler{
		config:  *config,
		invoker: invoker,
	}
	if h.config.Routes == nil {
		h.config.Routes = Routes()
	}
	if h.config.MaxBodySize <= 0 {
		h.config.MaxBodySize = DefaultMaxBodySize
	}
	if h.config.Logger == nil {
		h.config.Logger = slog.Default()
	}
	return h
}

// Router returns an http.Handler serving the route table. Protected routes run
// AuthMiddleware first; requests that match nothing, use an unsupported method,
// or carry the bypass token get the 404 catch-all.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger(h.config.Logger))
	r.Use(Recoverer(h.config.Logger))

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(NotFound)
	r.MethodNotAllowed(NotFound)

	authenticate := AuthMiddleware(h.config.Auth, http.HandlerFunc(NotFound))

	for _, rt := range h.config.Routes {
		var handler http.Handler = h.routeHandler(rt)
		if rt.Auth {
			handler = authenticate(handler)
		}
		r.Method(rt.Method, rt.Pattern, handler)
	}

	return r
}

func (h *Handler) routeHandler(rt Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rt.Static != nil {
			_ = WriteJSON(w, http.StatusOK, rt.Static)
			return
		}

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxBodySize)
		}

		call, err := rt.Call(r)
		if err != nil {
			HandleError(w, r, h.config.Logger, err)
			return
		}

		result, err := h.invoker.Invoke(r.Context(), call)
		if err != nil {
			HandleError(w, r, h.config.Logger, err)
			return
		}

		if err := WriteJSON(w, http.StatusOK, result); err != nil {
			h.config.Logger.ErrorContext(r.Context(), "failed to encode response", "procedure", rt.Procedure, "error", err)
		}
	}
}
