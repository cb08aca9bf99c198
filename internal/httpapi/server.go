// Package httpapi exposes the linter over HTTP with JSON bodies.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hlsllint/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Open(doc types.Document) error
	Change(req types.ChangeRequest) error
	Save(req types.SaveRequest) error
	Close(uri string) error
	Lint(ctx context.Context, uri string) ([]types.Diagnostic, error)
	Diagnostics(uri string) ([]types.Diagnostic, error)
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Post("/open", func(w http.ResponseWriter, r *http.Request) {
			var doc types.Document
			if !decodeJSON(w, r, &doc) {
				return
			}
			respond(w, svc.Open(doc))
		})
		r.Post("/change", func(w http.ResponseWriter, r *http.Request) {
			var req types.ChangeRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			respond(w, svc.Change(req))
		})
		r.Post("/save", func(w http.ResponseWriter, r *http.Request) {
			var req types.SaveRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			respond(w, svc.Save(req))
		})
		r.Post("/close", func(w http.ResponseWriter, r *http.Request) {
			var req types.URIRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			respond(w, svc.Close(req.URI))
		})
	})

	r.Post("/lint", func(w http.ResponseWriter, r *http.Request) {
		var req types.URIRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.URI) == "" {
			writeJSONError(w, http.StatusBadRequest, "uri is required")
			return
		}
		// Join server base context with request context so shutdown cancels the wait too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if lintTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, lintTimeout)
			defer tcancel()
		}
		diags, err := svc.Lint(ctx, req.URI)
		if err != nil {
			// Client gone or server shutting down: nobody to answer.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			if ctx.Err() != nil {
				writeJSONError(w, http.StatusGatewayTimeout, "lint timed out")
				return
			}
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, types.DiagnosticsResponse{URI: req.URI, Diagnostics: diags})
	})

	r.Get("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		uri := r.URL.Query().Get("uri")
		if uri == "" {
			writeJSONError(w, http.StatusBadRequest, "uri query parameter is required")
			return
		}
		diags, err := svc.Diagnostics(uri)
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, types.DiagnosticsResponse{URI: uri, Diagnostics: diags})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("compiler unavailable"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// decodeJSON reads a JSON body into v, answering the request itself and
// returning false when the body is not acceptable.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// MaxBytesReader errors also land here; 400 avoids leaking the limit.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// respond answers a document operation: 204 on success, a mapped error otherwise.
func respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
