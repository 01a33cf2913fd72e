package auth

import (
	"log/slog"
	"net/http"

	"github.com/agentviz/agentviz/pkg/observability"
	"github.com/agentviz/agentviz/pkg/storage"
)

// DefaultBypassEndpoints skip authentication entirely.
var DefaultBypassEndpoints = []string{"/healthz", "/readyz", "/metrics"}

// Middleware wraps a handler with chain authentication and optional
// rate limiting. Authenticated requests carry the identity and tenant
// in their context.
func Middleware(chain *AuthChain, limiter RateLimiter, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			result := chain.Authenticate(r.Context(), r)

			if result.Decision == No {
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", result.Err,
				)
				http.Error(w, `{"error":{"type":"invalid_request","message":"authentication required"}}`, http.StatusUnauthorized)
				return
			}

			if result.Decision != Yes || result.Identity == nil {
				http.Error(w, `{"error":{"type":"invalid_request","message":"authentication required"}}`, http.StatusUnauthorized)
				return
			}

			if result.Identity.Subject == "" {
				slog.Error("authenticator returned identity with empty subject")
				http.Error(w, `{"error":{"type":"server_error","message":"internal authentication error"}}`, http.StatusInternalServerError)
				return
			}

			slog.Debug("authentication succeeded",
				"subject", result.Identity.Subject,
				"path", r.URL.Path,
			)

			if limiter != nil {
				if err := limiter.Allow(r.Context(), result.Identity); err != nil {
					slog.Warn("rate limit exceeded",
						"subject", result.Identity.Subject,
						"tier", result.Identity.ServiceTier,
					)
					observability.RateLimitRejectedTotal.WithLabelValues(result.Identity.ServiceTier).Inc()
					http.Error(w, `{"error":{"type":"too_many_requests","message":"rate limit exceeded"}}`, http.StatusTooManyRequests)
					return
				}
			}

			ctx := SetIdentity(r.Context(), result.Identity)
			if tenantID := result.Identity.TenantID(); tenantID != "" {
				ctx = storage.SetTenant(ctx, tenantID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
