// internal/snapshot/resolve.go
//
// Per-field resolution tables.
//
// Context
// -------
// Each snapshot field resolves through an ordered list of candidate
// sources ending in a literal default.  Earlier revisions buried this
// policy in chained short-circuit expressions; the table form makes
// two properties explicit and testable:
//
//   • fields resolve independently (a missing city never suppresses a
//     present region), and
//   • the default asymmetry is deliberate (city falls back to
//     "Unknown City" while latitude resolves to the empty string and
//     is omitted downstream).
package snapshot

import (
	"net/http"

	"github.com/nos486/netmon/internal/edge"
)

// A source yields a candidate value from the request inputs.
type source func(h http.Header, bag edge.Metadata) (string, bool)

// fromBag reads one edge metadata key.
func fromBag(key string) source {
	return func(_ http.Header, bag edge.Metadata) (string, bool) {
		return bag.Get(key)
	}
}

// fromHeader reads one request header.
func fromHeader(name string) source {
	return func(h http.Header, _ edge.Metadata) (string, bool) {
		if v := h.Get(name); v != "" {
			return v, true
		}
		return "", false
	}
}

// rule is one field's ordered candidate list.  When no source yields,
// fallback applies; rules with omit leave the field empty instead so
// serialization can drop it.
type rule struct {
	sources  []source
	fallback string
	omit     bool
}

func (r rule) resolve(h http.Header, bag edge.Metadata) string {
	for _, s := range r.sources {
		if v, ok := s(h, bag); ok {
			return v
		}
	}
	if r.omit {
		return ""
	}
	return r.fallback
}

// The resolution tables.  Order within each rule is the fallback
// chain; the final column is the documented default.
var (
	ruleIP        = rule{sources: []source{fromBag(edge.KeyIP)}, fallback: "Unknown"}
	ruleUserAgent = rule{sources: []source{fromHeader("User-Agent")}, fallback: "Unknown"}

	// Country prefers edge geolocation metadata over the simpler
	// country header.
	ruleCountry = rule{
		sources:  []source{fromBag(edge.KeyCountry), fromHeader("CF-IPCountry")},
		fallback: "Unknown",
	}

	ruleISP      = rule{sources: []source{fromBag(edge.KeyISP)}, fallback: "Unknown ISP"}
	ruleASN      = rule{sources: []source{fromBag(edge.KeyASN)}, fallback: "Unknown ASN"}
	ruleProtocol = rule{sources: []source{fromBag(edge.KeyProtocol)}, fallback: "HTTP"}

	ruleCity      = rule{sources: []source{fromBag(edge.KeyCity)}, fallback: "Unknown City"}
	ruleRegion    = rule{sources: []source{fromBag(edge.KeyRegion)}, fallback: "Unknown Region"}
	ruleMetroCode = rule{sources: []source{fromBag(edge.KeyMetroCode)}, fallback: "N/A"}
	ruleTimezone  = rule{sources: []source{fromBag(edge.KeyTimezone)}, fallback: "UTC"}

	// Intentionally absent when unknown.
	ruleLatitude  = rule{sources: []source{fromBag(edge.KeyLatitude)}, omit: true}
	ruleLongitude = rule{sources: []source{fromBag(edge.KeyLongitude)}, omit: true}
	ruleColo      = rule{sources: []source{fromBag(edge.KeyColo)}, omit: true}

	ruleTLSVersion   = rule{sources: []source{fromBag(edge.KeyTLSVersion)}, fallback: "Unknown"}
	ruleTLSCipher    = rule{sources: []source{fromBag(edge.KeyTLSCipher)}, fallback: "Unknown"}
	ruleThreatScore  = rule{sources: []source{fromBag(edge.KeyThreatScore)}, fallback: "N/A"}
	ruleHTTPProtocol = rule{sources: []source{fromBag(edge.KeyHTTPProtocol)}, fallback: "HTTP/1.1"}
)

// retainedHeaders is the fixed allow-list surfaced in responses, in
// presentation order.  Lookup is case-insensitive; absent headers are
// omitted rather than emitted as nulls.
var retainedHeaders = []string{
	"accept-language",
	"accept-encoding",
	"accept",
	"dnt",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
	"sec-fetch-dest",
	"sec-fetch-mode",
	"sec-fetch-site",
	"upgrade-insecure-requests",
	"cache-control",
	"pragma",
	"connection",
	"x-forwarded-for",
	"x-real-ip",
}

func retainHeaders(h http.Header) Headers {
	out := make(Headers, 0, len(retainedHeaders))
	for _, name := range retainedHeaders {
		if v := h.Get(name); v != "" {
			out = append(out, Header{Name: name, Value: v})
		}
	}
	return out
}
