package shimhttp

import (
	"compress/gzip"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "github.com/practicearena/coachcore/internal/errors"
	"github.com/practicearena/coachcore/internal/sanitize"
)

// apiKeyHeader is the shared-secret header callers must present.
const apiKeyHeader = "X-API-Key"

// requestIDKey is the context key correlation ids are stamped under, per
// the teacher's convention of passing a request id into every log line
// rather than resolving it from a runtime-injected session.
type contextKey string

const requestIDKey contextKey = "request_id"

// authMiddleware rejects any request missing X-API-Key or presenting a
// value that does not match cfg.APIKey with 401. It never echoes the
// provided secret back to the caller, and compares in constant time so
// response timing cannot be used to brute-force the key.
func (s *Service) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := r.Header.Get(apiKeyHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(s.cfg.APIKey)) != 1 {
			s.writeError(w, r, apperrors.NewAuthError("missing or invalid API key"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware stamps a correlation id onto the request context and
// response headers, the way callers can tie a client-side error back to a
// specific server-side log line.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := contextWithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recoveryMiddleware converts any panic in a downstream handler into a
// sanitized 500, never leaking the panic value, a stack trace, or an
// absolute path to the caller.
func (s *Service) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestIDFromContext(r.Context()),
					"path":       r.URL.Path,
				}).Errorf("panic recovered: %v", rec)
				s.writeError(w, r, apperrors.New(apperrors.ErrorTypeInternal, "an internal error occurred"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware applies bucket's per-source-address budget. A nil
// limiter (no Redis configured) disables rate limiting rather than failing
// every request closed.
func (s *Service) rateLimitMiddleware(bucket string, limit int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			key := clientAddr(r)
			ok, err := s.limiter.Allow(r.Context(), bucket, key, limit)
			if err != nil {
				s.log.WithError(err).Warn("rate limiter unavailable, failing open")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				if s.metrics != nil {
					s.metrics.RateLimitRejected.WithLabelValues(bucket).Inc()
				}
				s.writeError(w, r, apperrors.NewRateLimitError("rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientAddr returns the caller's source address, preferring a proxy
// forwarding header over the raw connection address the way a service
// behind a load balancer must.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return r.RemoteAddr
}

// corsMiddleware builds the go-chi/cors middleware from the configured
// origin allow-list.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", apiKeyHeader, "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// gzipMiddleware compresses response bodies of at least threshold bytes.
// It buffers the response to learn its size before deciding whether to
// compress, since the size is only known once the handler finishes
// writing.
func gzipMiddleware(threshold int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}
			buf := &bufferedResponseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(buf, r)

			if buf.body.Len() < threshold {
				w.WriteHeader(buf.status)
				_, _ = w.Write(buf.body.Bytes())
				return
			}

			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Del("Content-Length")
			w.WriteHeader(buf.status)
			gz := gzip.NewWriter(w)
			_, _ = gz.Write(buf.body.Bytes())
			_ = gz.Close()
		})
	}
}

// defaultSanitizer is a package-level convenience over a shared Sanitizer
// instance, used wherever a handler needs to scrub one string rather than
// an entire response.
var defaultSanitizer = sanitize.NewSanitizer()
