// internal/gate/gate.go
//
// Ordered access-control middleware.
//
// Context
// -------
// Three independent stages share one contract, request → allow or
// terminal response, and compose as ordinary chi middleware.  The
// mount order is a design decision: cheap rejections run before
// expensive ones.
//
//	1. BotFilter    – substring match on the User-Agent, no I/O.
//	2. RequireAuth  – constant-time compare of one header, no I/O.
//	3. RateLimit    – one counter-store round-trip.
//
// A bot rejection therefore never consumes a rate-limit slot and
// never reaches storage.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package gate

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"

	"github.com/nos486/netmon/internal/edge"
	"github.com/nos486/netmon/internal/metrics"
)

// AuthHeader carries the shared-secret sentinel for privileged routes.
const AuthHeader = "X-Edge-Auth"

const deniedBody = "Access denied.\n"

// BotFilter terminates requests whose User-Agent matches the
// deny-list.  Matched requests never reach later stages, the renderer,
// or the visit log.
func BotFilter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sig, hit := MatchBot(r.UserAgent()); hit {
			metrics.BotBlockedTotal.Inc()
			zap.S().Debugw("bot blocked",
				"signature", sig,
				"ip", edge.ClientIP(r),
				"path", r.URL.Path,
			)
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(deniedBody))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth guards privileged routes with a shared-secret header.
// Any mismatch, including an absent header, terminates with 403 and a
// structured error payload.
func RequireAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(AuthHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				metrics.UnauthorizedTotal.Inc()
				zap.S().Debugw("privileged route denied",
					"ip", edge.ClientIP(r),
					"path", r.URL.Path,
				)
				writeError(w, http.StatusForbidden, "unauthorized",
					"This endpoint requires a valid access token.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
