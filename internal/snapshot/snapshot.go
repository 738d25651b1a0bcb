// internal/snapshot/snapshot.go
//
// Canonical per-request network/identity/client snapshot.
//
// Context
// -------
// A Snapshot is constructed fresh for every request from two inputs:
// the request headers and the edge metadata bag.  It is owned by the
// request handler, never persisted, and safe to JSON-encode or log.
//
// Every field of Network, Identity, Client, and Security is always
// present with either a real value or its documented default.  The
// single deliberate exception: Identity.Latitude, .Longitude, and
// .Colo stay absent (omitted from JSON, em-dash in text reports) when
// the edge layer does not supply them.  There is no honest textual
// default for a coordinate.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package snapshot

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/nos486/netmon/internal/edge"
	"github.com/nos486/netmon/internal/ua"
)

// Network describes the caller's network path.
type Network struct {
	IP       string `json:"ip"`
	ISP      string `json:"isp"`
	ASN      string `json:"asn"`
	Protocol string `json:"protocol"`
}

// Identity describes the caller's geolocation.
type Identity struct {
	Country   string `json:"country"`
	City      string `json:"city"`
	Region    string `json:"region"`
	MetroCode string `json:"metroCode"`
	Timezone  string `json:"timezone"`
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
	Colo      string `json:"colo,omitempty"`
}

// Client describes the parsed user agent.
type Client struct {
	OS        string `json:"os"`
	Browser   string `json:"browser"`
	Engine    string `json:"engine"`
	Device    string `json:"device"`
	UserAgent string `json:"userAgent"`
}

// Security describes transport-level metadata.
type Security struct {
	TLSVersion   string `json:"tlsVersion"`
	TLSCipher    string `json:"tlsCipher"`
	ThreatScore  string `json:"threatScore"`
	HTTPProtocol string `json:"httpProtocol"`
}

// Header is one retained request header.
type Header struct {
	Name  string
	Value string
}

// Headers preserves the allow-list order when serialized; a plain map
// would randomize it.
type Headers []Header

// Get performs a case-insensitive lookup.
func (h Headers) Get(name string) (string, bool) {
	canon := http.CanonicalHeaderKey(name)
	for _, kv := range h {
		if http.CanonicalHeaderKey(kv.Name) == canon {
			return kv.Value, true
		}
	}
	return "", false
}

// MarshalJSON emits a JSON object in slice order.
func (h Headers) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 64*len(h)+2)
	buf = append(buf, '{')
	for i, kv := range h {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(kv.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}

// Snapshot is the canonical data object assembled per request.
type Snapshot struct {
	IP        string   `json:"ip"`
	Country   string   `json:"country"`
	UserAgent string   `json:"userAgent"`
	Network   Network  `json:"network"`
	Identity  Identity `json:"identity"`
	Client    Client   `json:"client"`
	Headers   Headers  `json:"headers"`
	Security  Security `json:"security"`
}

// Extract builds a Snapshot from the request headers and the edge
// metadata bag.  Pure given its inputs; each field resolves through
// its own candidate list, so one missing bag key never suppresses
// another field's value.
func Extract(h http.Header, bag edge.Metadata, cls ua.Classifier) Snapshot {
	rawUA := ruleUserAgent.resolve(h, bag)
	info := cls.Classify(h.Get("User-Agent"))

	return Snapshot{
		IP:        ruleIP.resolve(h, bag),
		Country:   ruleCountry.resolve(h, bag),
		UserAgent: rawUA,
		Network: Network{
			IP:       ruleIP.resolve(h, bag),
			ISP:      ruleISP.resolve(h, bag),
			ASN:      ruleASN.resolve(h, bag),
			Protocol: ruleProtocol.resolve(h, bag),
		},
		Identity: Identity{
			Country:   ruleCountry.resolve(h, bag),
			City:      ruleCity.resolve(h, bag),
			Region:    ruleRegion.resolve(h, bag),
			MetroCode: ruleMetroCode.resolve(h, bag),
			Timezone:  ruleTimezone.resolve(h, bag),
			Latitude:  ruleLatitude.resolve(h, bag),
			Longitude: ruleLongitude.resolve(h, bag),
			Colo:      ruleColo.resolve(h, bag),
		},
		Client: Client{
			OS:        info.OSLabel(),
			Browser:   info.BrowserLabel(),
			Engine:    info.Engine,
			Device:    info.Device,
			UserAgent: rawUA,
		},
		Headers: retainHeaders(h),
		Security: Security{
			TLSVersion:   ruleTLSVersion.resolve(h, bag),
			TLSCipher:    ruleTLSCipher.resolve(h, bag),
			ThreatScore:  ruleThreatScore.resolve(h, bag),
			HTTPProtocol: ruleHTTPProtocol.resolve(h, bag),
		},
	}
}
