// internal/middleware/cors.go
//
// Permissive CORS for the public API.
//
// Every route is read-only and unauthenticated apart from the
// privileged-route header, so a wildcard origin is appropriate.  The
// sentinel header is listed in Allow-Headers so browser callers of
// the privileged endpoints can send it.

package middleware

import "net/http"

// CORS allows cross-origin GET access to the API.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, X-Edge-Auth")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
