package core

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"smokebuddy/internal/types"
)

// responseCapture remembers the first status written through it.
type responseCapture struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rc *responseCapture) WriteHeader(code int) {
	rc.record(code)
	rc.ResponseWriter.WriteHeader(code)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.record(http.StatusOK)
	return rc.ResponseWriter.Write(b)
}

func (rc *responseCapture) record(code int) {
	if rc.wroteHeader {
		return
	}
	rc.statusCode, rc.wroteHeader = code, true
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (rc *responseCapture) Unwrap() http.ResponseWriter { return rc.ResponseWriter }

func capture(w http.ResponseWriter) *responseCapture {
	return &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}
}

// Recoverer converts a panic into a 500 error envelope and logs the stack.
// http.ErrAbortHandler is re-raised untouched. Mount it first.
func (s *Server) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			switch p {
			case nil:
				return
			case http.ErrAbortHandler:
				panic(p)
			}

			s.Logger.Error("handler panicked",
				"method", r.Method,
				"path", r.URL.Path,
				"panic", fmt.Sprint(p),
				"stack", string(debug.Stack()),
			)

			// r predates RequestIDMiddleware, so fall back to the echoed header.
			reqID := types.GetRequestID(r.Context())
			if reqID == "" {
				reqID = w.Header().Get("X-Request-Id")
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = writeJSON(w, APIErrorResponse{Error: ErrorDetail{
				Code:      string(types.ErrCodeInternalUnexpected),
				Message:   "an unexpected error occurred",
				RequestID: reqID,
			}})
		}()
		next.ServeHTTP(w, r)
	})
}

// RequestLogger emits one access log line per request at a level derived
// from the status. Headers named in redact are logged as [REDACTED].
func RequestLogger(logger *slog.Logger, redact []string) func(http.Handler) http.Handler {
	hidden := make([]string, len(redact))
	for i, h := range redact {
		hidden[i] = http.CanonicalHeaderKey(h)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			began := time.Now()
			rc := capture(w)
			next.ServeHTTP(rc, r)

			level := slog.LevelInfo
			if rc.statusCode >= 500 {
				level = slog.LevelError
			} else if rc.statusCode >= 400 {
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rc.statusCode),
				slog.Duration("duration", time.Since(began)),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if id := types.GetRequestID(r.Context()); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}
			if len(r.Header) > 0 {
				hdrs := make([]any, 0, len(r.Header))
				for name, vals := range r.Header {
					v := strings.Join(vals, ", ")
					if slices.Contains(hidden, http.CanonicalHeaderKey(name)) {
						v = "[REDACTED]"
					}
					hdrs = append(hdrs, slog.String(name, v))
				}
				attrs = append(attrs, slog.Group("headers", hdrs...))
			}

			logger.LogAttrs(r.Context(), level, "request completed", attrs...)
		})
	}
}

// MetricsMiddleware records count and latency keyed by chi route pattern.
// Without a collector it only forwards.
func (s *Server) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		began := time.Now()
		rc := capture(w)
		next.ServeHTTP(rc, r)
		s.Metrics.RecordRequest(r.Method, routePattern(r), strconv.Itoa(rc.statusCode), time.Since(began))
	})
}

// routePattern keeps metric labels bounded: raw paths are never used.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return "unmatched"
	}
	return rctx.RoutePattern()
}

func (s *Server) SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// NewCORSMiddleware echoes a listed Origin (or "*" when the list contains
// it) and short-circuits OPTIONS with 204.
func NewCORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	wildcard := slices.Contains(allowedOrigins, "*")

	allowFor := func(origin string) string {
		switch {
		case wildcard:
			return "*"
		case origin != "" && slices.Contains(allowedOrigins, origin):
			return origin
		}
		return ""
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allow := allowFor(r.Header.Get("Origin")); allow != "" {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", allow)
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
				h.Set("Access-Control-Expose-Headers", "X-Request-Id")
				h.Set("Access-Control-Max-Age", "86400")
				if !wildcard {
					h.Add("Vary", "Origin")
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON renders the error envelope without encoding/json so the panic
// path has no reflection.
func writeJSON(w http.ResponseWriter, resp APIErrorResponse) error {
	e := resp.Error
	_, err := fmt.Fprintf(w, `{"error":{"code":"%s","message":"%s","request_id":"%s"}}`,
		escapeJSON(e.Code), escapeJSON(e.Message), escapeJSON(e.RequestID))
	return err
}

var jsonEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func escapeJSON(s string) string { return jsonEscaper.Replace(s) }
