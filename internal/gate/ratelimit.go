// internal/gate/ratelimit.go
//
// Fixed-window per-IP rate limiting.
//
// Context
// -------
// The window state lives in an external counter store keyed by caller
// IP.  Each check is a plain read followed by a write; the pair is
// not atomic, so concurrent requests from one IP inside the same
// scheduling tick may both observe a stale count and both increment.
// Limited overshoot past the nominal limit is an accepted
// approximation.
//
// Fail-open policy: any store error is logged, counted, and treated
// as an implicit allow.  Counter-store availability must never deny
// legitimate traffic.
package gate

import (
	"context"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/nos486/netmon/internal/edge"
	"github.com/nos486/netmon/internal/metrics"
)

// Counter is one IP's window record.  Stale records are overwritten
// lazily on the next access, never garbage-collected here.
type Counter struct {
	Count     int   // requests observed in the current window
	ExpiresAt int64 // epoch seconds
}

// CounterStore is the external read-modify-write counter table.
type CounterStore interface {
	// Fetch returns the record for key, reporting presence.
	Fetch(ctx context.Context, key string) (Counter, bool, error)
	// Store overwrites the record for key.
	Store(ctx context.Context, key string, c Counter) error
}

// Limits for the fixed window.
const (
	DefaultLimit  = 60
	DefaultWindow = 60 * time.Second
)

// RateLimit returns middleware enforcing limit requests per window
// per caller IP against store.
func RateLimit(store CounterStore, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := edge.ClientIP(r)
			if ip == "" {
				ip = "unknown"
			}
			now := time.Now()

			c, found, err := store.Fetch(r.Context(), ip)
			if err != nil {
				failOpen(r, err)
				next.ServeHTTP(w, r)
				return
			}

			if found && c.ExpiresAt > now.Unix() {
				if c.Count >= limit {
					metrics.RateLimitedTotal.Inc()
					retryAfter := c.ExpiresAt - now.Unix()
					if retryAfter < 1 {
						retryAfter = 1
					}
					setLimitHeaders(w, limit, 0, c.ExpiresAt)
					w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
					writeError(w, http.StatusTooManyRequests, "rate_limited",
						"Too many requests from this IP address. Please try again later.")
					return
				}
				c.Count++
			} else {
				c = Counter{Count: 1, ExpiresAt: now.Add(window).Unix()}
			}

			if err := store.Store(r.Context(), ip, c); err != nil {
				failOpen(r, err)
				next.ServeHTTP(w, r)
				return
			}

			remaining := limit - c.Count
			if remaining < 0 {
				remaining = 0
			}
			setLimitHeaders(w, limit, remaining, c.ExpiresAt)
			next.ServeHTTP(w, r)
		})
	}
}

func failOpen(r *http.Request, err error) {
	metrics.CounterStoreErrorsTotal.Inc()
	zap.S().Errorw("counter store unavailable, allowing request",
		"err", err,
		"path", r.URL.Path,
	)
}

func setLimitHeaders(w http.ResponseWriter, limit, remaining int, resetAt int64) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
}

// writeError emits the gate's structured error payload.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": msg,
	})
}
