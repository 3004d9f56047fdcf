package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	apperror "brasero/internal/errors"
	"brasero/internal/pkg/cache"
	"brasero/internal/pkg/logger"
	"brasero/internal/pkg/respond"
)

// RateLimiter limita requisições por IP numa janela fixa guardada no Redis.
// scope separa os contadores (global, auth, recovery). Se o Redis falhar, a
// requisição segue (fail open) e o erro é logado.
func RateLimiter(client cache.Client, scope string, limit int, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("rate-limit:%s:%s", scope, clientIP(r))

			count, err := client.Incr(r.Context(), key, window)
			if err != nil {
				log.Warn("Rate limiter indisponível, liberando requisição.", map[string]interface{}{
					"scope": scope,
					"error": err.Error(),
				})
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(limit) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				respond.Error(w, r, log, apperror.NewTooManyRequestsError("muitas requisições. Tente novamente mais tarde."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
