// internal/edge/metadata.go
//
// Edge metadata bag.
//
// Context
// -------
// The fronting edge/proxy layer forwards per-connection intelligence
// as X-Edge-* headers (ASN, ISP, geolocation, TLS parameters, threat
// score) alongside the Cloudflare-compatible CF-Connecting-IP and
// CF-IPCountry.  This package collects those headers into an opaque
// key/value bag so the snapshot extractor never touches raw headers
// for edge-supplied fields.  Missing keys are absent, never "".
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package edge

import (
	"net"
	"net/http"
	"strings"
)

// Bag keys.  Values arrive from X-Edge-<key> with dashes in place of
// underscores, e.g. X-Edge-Tls-Version → tls_version.
const (
	KeyIP           = "ip"
	KeyCountry      = "country"
	KeyASN          = "asn"
	KeyISP          = "isp"
	KeyCity         = "city"
	KeyRegion       = "region"
	KeyMetroCode    = "metro_code"
	KeyTimezone     = "timezone"
	KeyLatitude     = "latitude"
	KeyLongitude    = "longitude"
	KeyColo         = "colo"
	KeyProtocol     = "protocol"
	KeyTLSVersion   = "tls_version"
	KeyTLSCipher    = "tls_cipher"
	KeyThreatScore  = "threat_score"
	KeyHTTPProtocol = "http_protocol"
)

var bagKeys = []string{
	KeyCountry, KeyASN, KeyISP, KeyCity, KeyRegion, KeyMetroCode,
	KeyTimezone, KeyLatitude, KeyLongitude, KeyColo, KeyProtocol,
	KeyTLSVersion, KeyTLSCipher, KeyThreatScore, KeyHTTPProtocol,
}

// Metadata is the per-request bag.  Lookups go through Get so absent
// and empty are indistinguishable to callers.
type Metadata map[string]string

// Get returns the value for key and whether it is present and
// non-empty.
func (m Metadata) Get(key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Set stores a value, ignoring empty strings so later fallbacks still
// apply.
func (m Metadata) Set(key, val string) {
	if val != "" {
		m[key] = val
	}
}

// FromRequest builds the bag from the edge headers of r.  The caller
// IP is resolved once here (ClientIP precedence) and stored under
// KeyIP.
func FromRequest(r *http.Request) Metadata {
	m := make(Metadata, len(bagKeys)+1)
	for _, key := range bagKeys {
		m.Set(key, r.Header.Get(headerFor(key)))
	}
	m.Set(KeyIP, ClientIP(r))
	return m
}

// headerFor maps a bag key to its X-Edge-* header name.
func headerFor(key string) string {
	return "X-Edge-" + strings.ReplaceAll(key, "_", "-")
}

// ClientIP extracts the caller address: CF-Connecting-IP first, then
// the left-most parseable X-Forwarded-For entry, then X-Real-Ip, then
// the RemoteAddr host.  Empty string when nothing parses.
func ClientIP(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); v != "" {
		return v
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}
	if xrip := strings.TrimSpace(r.Header.Get("X-Real-Ip")); xrip != "" {
		return xrip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return ""
}
