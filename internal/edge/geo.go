// internal/edge/geo.go
//
// Local GeoLite2 fallback for the metadata bag.
//
// When the edge layer omits geolocation keys (self-hosted deployments,
// misconfigured proxies), an optional MaxMind City database fills the
// gaps.  Enrich only writes keys the bag does not already carry, so
// edge-supplied values always win.
package edge

import (
	"net"
	"strconv"

	"github.com/oschwald/geoip2-golang"
)

// GeoDB wraps a concurrency-safe geoip2 reader.  A nil *GeoDB is a
// valid no-op enricher.
type GeoDB struct {
	reader *geoip2.Reader
}

// OpenGeo opens the City database at path.  Callers should Close()
// the returned GeoDB at shutdown.
func OpenGeo(path string) (*GeoDB, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &GeoDB{reader: r}, nil
}

// Close releases the underlying reader.
func (g *GeoDB) Close() error {
	if g == nil || g.reader == nil {
		return nil
	}
	return g.reader.Close()
}

// Enrich fills absent geolocation keys from the local database.  Any
// lookup error leaves the bag untouched; the resolution tables still
// apply their defaults downstream.
func (g *GeoDB) Enrich(m Metadata) {
	if g == nil || g.reader == nil {
		return
	}
	raw, ok := m.Get(KeyIP)
	if !ok {
		return
	}
	ip := net.ParseIP(raw)
	if ip == nil {
		return
	}
	rec, err := g.reader.City(ip)
	if err != nil {
		return
	}

	fill := func(key, val string) {
		if _, has := m.Get(key); !has {
			m.Set(key, val)
		}
	}
	fill(KeyCountry, rec.Country.IsoCode)
	fill(KeyCity, rec.City.Names["en"])
	if len(rec.Subdivisions) > 0 {
		fill(KeyRegion, rec.Subdivisions[0].Names["en"])
	}
	fill(KeyTimezone, rec.Location.TimeZone)
	if rec.Location.Latitude != 0 || rec.Location.Longitude != 0 {
		fill(KeyLatitude, strconv.FormatFloat(rec.Location.Latitude, 'f', 4, 64))
		fill(KeyLongitude, strconv.FormatFloat(rec.Location.Longitude, 'f', 4, 64))
	}
	if rec.Location.MetroCode != 0 {
		fill(KeyMetroCode, strconv.Itoa(int(rec.Location.MetroCode)))
	}
}
