// internal/render/render.go
//
// Content-negotiated response rendering.
//
// Context
// -------
// Terminal clients (curl, wget, httpie, ...) get a fixed-width text
// report; everything else gets JSON.  Negotiation is driven entirely
// by the User-Agent prefix, matching how people actually consume this
// service: `curl netmon.example/api/ip` must read well unpiped.  The
// .txt and .json endpoint suffixes force one representation
// unconditionally.
package render

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/nos486/netmon/internal/gate"
	"github.com/nos486/netmon/internal/snapshot"
)

// WantsText reports whether the caller should receive the plain-text
// report.
func WantsText(userAgent string) bool {
	return gate.IsCLI(userAgent)
}

// IPPayload is the structured report envelope.
type IPPayload struct {
	Network  snapshot.Network   `json:"network"`
	Identity snapshot.Identity  `json:"identity"`
	Client   snapshot.Client    `json:"client"`
	Headers  snapshot.Headers   `json:"headers,omitempty"`
	Security *snapshot.Security `json:"security,omitempty"`
}

// FullPayload carries every section, headers included.  Served on the
// negotiated endpoint.
func FullPayload(s snapshot.Snapshot) IPPayload {
	sec := s.Security
	return IPPayload{
		Network:  s.Network,
		Identity: s.Identity,
		Client:   s.Client,
		Headers:  s.Headers,
		Security: &sec,
	}
}

// DataPayload is the data-only variant: no header echo.
func DataPayload(s snapshot.Snapshot) IPPayload {
	sec := s.Security
	return IPPayload{
		Network:  s.Network,
		Identity: s.Identity,
		Client:   s.Client,
		Security: &sec,
	}
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
