// internal/snapshot/snapshot_test.go
//
// Unit-tests for the per-field resolution tables and header retention.
//
// Run: go test ./internal/snapshot -v

package snapshot

import (
	"net/http"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/nos486/netmon/internal/edge"
	"github.com/nos486/netmon/internal/ua"
)

func fullBag() edge.Metadata {
	return edge.Metadata{
		edge.KeyIP:           "203.0.113.7",
		edge.KeyCountry:      "US",
		edge.KeyISP:          "ExampleNet",
		edge.KeyASN:          "AS64500",
		edge.KeyProtocol:     "HTTPS",
		edge.KeyCity:         "Chicago",
		edge.KeyRegion:       "Illinois",
		edge.KeyMetroCode:    "602",
		edge.KeyTimezone:     "America/Chicago",
		edge.KeyLatitude:     "41.8781",
		edge.KeyLongitude:    "-87.6298",
		edge.KeyColo:         "ORD",
		edge.KeyTLSVersion:   "TLSv1.3",
		edge.KeyTLSCipher:    "AEAD-AES128-GCM-SHA256",
		edge.KeyThreatScore:  "0",
		edge.KeyHTTPProtocol: "HTTP/2",
	}
}

func TestExtract_FullBag(t *testing.T) {
	h := http.Header{}
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; rv:125.0) Gecko/20100101 Firefox/125.0")

	s := Extract(h, fullBag(), ua.Heuristic{})

	if s.IP != "203.0.113.7" || s.Network.IP != "203.0.113.7" {
		t.Fatalf("ip = %q / %q", s.IP, s.Network.IP)
	}
	if s.Country != "US" || s.Identity.Country != "US" {
		t.Fatalf("country = %q / %q", s.Country, s.Identity.Country)
	}
	if s.Network.ISP != "ExampleNet" || s.Network.ASN != "AS64500" || s.Network.Protocol != "HTTPS" {
		t.Fatalf("network = %+v", s.Network)
	}
	if s.Identity.Latitude != "41.8781" || s.Identity.Colo != "ORD" {
		t.Fatalf("identity = %+v", s.Identity)
	}
	if s.Client.Browser != "Firefox 125.0" || s.Client.Engine != "Gecko" {
		t.Fatalf("client = %+v", s.Client)
	}
	if s.Security.HTTPProtocol != "HTTP/2" {
		t.Fatalf("security = %+v", s.Security)
	}
}

func TestExtract_IndependentFallbacks(t *testing.T) {
	// A bag missing city must still surface region and timezone.
	bag := fullBag()
	delete(bag, edge.KeyCity)
	s := Extract(http.Header{}, bag, ua.Heuristic{})

	if s.Identity.City != "Unknown City" {
		t.Fatalf("city = %q, want Unknown City", s.Identity.City)
	}
	if s.Identity.Region != "Illinois" {
		t.Fatalf("region = %q, want Illinois", s.Identity.Region)
	}
	if s.Identity.Timezone != "America/Chicago" {
		t.Fatalf("timezone = %q, want America/Chicago", s.Identity.Timezone)
	}
}

func TestExtract_EmptyInputsDefaultTable(t *testing.T) {
	s := Extract(http.Header{}, edge.Metadata{}, ua.Heuristic{})

	want := map[string]string{
		"ip":           s.IP,
		"country":      s.Country,
		"ua":           s.UserAgent,
		"isp":          s.Network.ISP,
		"asn":          s.Network.ASN,
		"protocol":     s.Network.Protocol,
		"city":         s.Identity.City,
		"region":       s.Identity.Region,
		"metro":        s.Identity.MetroCode,
		"timezone":     s.Identity.Timezone,
		"tlsVersion":   s.Security.TLSVersion,
		"tlsCipher":    s.Security.TLSCipher,
		"threatScore":  s.Security.ThreatScore,
		"httpProtocol": s.Security.HTTPProtocol,
	}
	expect := map[string]string{
		"ip":           "Unknown",
		"country":      "Unknown",
		"ua":           "Unknown",
		"isp":          "Unknown ISP",
		"asn":          "Unknown ASN",
		"protocol":     "HTTP",
		"city":         "Unknown City",
		"region":       "Unknown Region",
		"metro":        "N/A",
		"timezone":     "UTC",
		"tlsVersion":   "Unknown",
		"tlsCipher":    "Unknown",
		"threatScore":  "N/A",
		"httpProtocol": "HTTP/1.1",
	}
	for k, v := range expect {
		if want[k] != v {
			t.Fatalf("%s = %q, want %q", k, want[k], v)
		}
	}

	// Asymmetric defaults: coordinates and colo stay absent.
	if s.Identity.Latitude != "" || s.Identity.Longitude != "" || s.Identity.Colo != "" {
		t.Fatalf("lat/long/colo should be empty, got %+v", s.Identity)
	}
	out, err := json.Marshal(s.Identity)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"latitude", "longitude", "colo"} {
		if strings.Contains(string(out), key) {
			t.Fatalf("serialized identity leaks absent key %q: %s", key, out)
		}
	}
}

func TestExtract_CountryHeaderFallback(t *testing.T) {
	h := http.Header{}
	h.Set("CF-IPCountry", "DE")
	s := Extract(h, edge.Metadata{}, ua.Heuristic{})
	if s.Country != "DE" {
		t.Fatalf("country = %q, want DE", s.Country)
	}

	// Bag metadata wins over the header.
	s = Extract(h, edge.Metadata{edge.KeyCountry: "FR"}, ua.Heuristic{})
	if s.Country != "FR" {
		t.Fatalf("country = %q, want FR", s.Country)
	}
}

func TestRetainHeaders_AllowListOrderAndCase(t *testing.T) {
	h := http.Header{}
	h.Set("ACCEPT", "application/json") // case-insensitive match
	h.Set("X-Forwarded-For", "203.0.113.9")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Authorization", "Bearer secret") // never retained
	h.Set("Cookie", "session=abc")          // never retained

	got := retainHeaders(h)

	wantOrder := []string{"accept-language", "accept", "x-forwarded-for"}
	if len(got) != len(wantOrder) {
		t.Fatalf("retained %d headers, want %d: %+v", len(got), len(wantOrder), got)
	}
	for i, name := range wantOrder {
		if got[i].Name != name {
			t.Fatalf("position %d = %q, want %q", i, got[i].Name, name)
		}
	}
	if v, ok := got.Get("Accept"); !ok || v != "application/json" {
		t.Fatalf("Get(Accept) = %q, %v", v, ok)
	}
	if _, ok := got.Get("Authorization"); ok {
		t.Fatal("authorization must not be retained")
	}

	out, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	// Object keys must appear in allow-list order.
	s := string(out)
	if strings.Index(s, "accept-language") > strings.Index(s, "x-forwarded-for") {
		t.Fatalf("allow-list order lost in JSON: %s", s)
	}
}
