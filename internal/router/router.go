package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/character"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/object"
	"github.com/ovaphlow/pitchfork/service-hive-go/pkg/utilities"
)

// RequestIDHeader carries the per-request id, echoed back when supplied.
const RequestIDHeader = "X-Request-ID"

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs every request at debug level with its request id.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", w.Header().Get(RequestIDHeader),
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// RequestIDMiddleware assigns a snowflake id to requests that arrive without one.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = utilities.NewRequestID()
				r.Header.Set(RequestIDHeader, id)
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware sets the response headers every hive answer carries.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("Cache-Control", "no-store")
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Deps are the handlers mounted under /hive/.
type Deps struct {
	Characters *character.Handler
	Objects    *object.Handler
	// JWTSecret enables bearer auth on every route except health when set.
	JWTSecret string
}

// RegisterRoutes mounts the hive API on a standard library ServeMux.
func RegisterRoutes(logger *zap.SugaredLogger, deps Deps) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /hive/characters/resolve", deps.Characters.Resolve)
	api.HandleFunc("GET /hive/characters/{id}", deps.Characters.Details)
	api.HandleFunc("POST /hive/characters/{id}/update", deps.Characters.Update)
	api.HandleFunc("POST /hive/characters/{id}/seed", deps.Characters.Seed)
	api.HandleFunc("POST /hive/characters/{id}/kill", deps.Characters.Kill)
	api.HandleFunc("POST /hive/logins", deps.Characters.Login)
	api.HandleFunc("GET /hive/objects/{uid}", deps.Objects.Resolve)

	var protected http.Handler = api
	if deps.JWTSecret != "" {
		protected = auth.Middleware([]byte(deps.JWTSecret), logger)(api)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /hive/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/hive/", protected)

	return RequestIDMiddleware()(LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux)))
}
