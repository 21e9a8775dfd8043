package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/okian/spadl/internal/domain/types"
	"github.com/okian/spadl/pkg/metrics"
)

// MetricsMiddleware records request counts and durations labelled by route
// pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if pattern := rc.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		status := strconv.Itoa(code)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, float64(time.Since(start).Milliseconds()))
		if code >= http.StatusBadRequest {
			metrics.RecordErrorByComponent("http", errorType(code))
		}
	})
}

func errorType(code int) string {
	switch {
	case code >= http.StatusInternalServerError:
		return "server_error"
	case code == http.StatusTooManyRequests:
		return "rate_limit"
	case code == http.StatusNotFound:
		return "not_found"
	default:
		return "client_error"
	}
}

type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func (l *clientLimiter) get(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok := l.limiters[client]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(l.rate, l.burst)
	l.limiters[client] = limiter
	return limiter
}

// RateLimitMiddleware limits each client IP to rps requests per second.
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil || ip == "" {
				ip = r.RemoteAddr
			}
			if !limiter.get(ip).Allow() {
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusTooManyRequests, types.ErrorResponse{Error: "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
