package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/listenupapp/seriesd/internal/auth"
	"github.com/listenupapp/seriesd/internal/logger"
	"github.com/listenupapp/seriesd/internal/metrics"
	"github.com/listenupapp/seriesd/internal/ratelimit"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const userIDKey ctxKey = "userID"

// userIDFrom returns the authenticated user ID, or "" for guests.
func userIDFrom(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// authMiddleware resolves the Bearer token into a user ID. Requests without
// an Authorization header proceed as guests; a bad token is rejected with 401
// rather than silently downgraded.
func authMiddleware(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, unauthorized("invalid authorization header format"))
				return
			}
			claims, err := tokens.Verify(token)
			if err != nil {
				writeError(w, unauthorized("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), claims.UserID)))
		})
	}
}

// rateLimitMiddleware limits writes per client IP. Reads pass through.
func rateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isRead(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r)
			if !limiter.Allow(key) {
				log.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
				w.Header().Set("Retry-After", "1")
				writeError(w, &APIError{
					status:  http.StatusTooManyRequests,
					Code:    statusToCode(http.StatusTooManyRequests),
					Message: "too many requests, please try again later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// observeMiddleware records latency per route pattern and logs each request.
func observeMiddleware(m *metrics.Metrics, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			m.ObserveRequest(r.Method, route, status, elapsed)
			log.Debug("request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", elapsed,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func unauthorized(msg string) *APIError {
	return &APIError{status: http.StatusUnauthorized, Code: statusToCode(http.StatusUnauthorized), Message: msg}
}

func isRead(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// clientIP returns the host part of RemoteAddr. middleware.RealIP runs first
// and has already applied X-Forwarded-For or X-Real-IP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
