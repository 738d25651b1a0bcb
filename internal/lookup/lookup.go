// internal/lookup/lookup.go
//
// Third-party IP geolocation adapter.
//
// Context
// -------
// The one outbound network call this service makes to an uncontrolled
// dependency, so it carries what the in-house calls do not need: an
// explicit client timeout, a singleflight group collapsing concurrent
// lookups of the same address, and a TTL'd LRU over successful
// results.  One request, no retries.
//
// Failure taxonomy
// ----------------
//	ErrInvalidInput    – address fails the character-class check; no
//	                     network round-trip is made.
//	ErrNotFound        – the service answered status=fail.
//	ErrUnavailable     – transport or parse failure.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/nos486/netmon/internal/metrics"
)

var (
	ErrInvalidInput = errors.New("lookup: invalid address")
	ErrNotFound     = errors.New("lookup: address not found")
	ErrUnavailable  = errors.New("lookup: service unavailable")
)

// Record is the normalized geolocation result.  Field names are
// deliberately decoupled from the upstream schema.
type Record struct {
	IP          string  `json:"ip"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Region      string  `json:"region"`
	City        string  `json:"city"`
	PostalCode  string  `json:"postalCode"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	ASN         string  `json:"asn"`
	ASName      string  `json:"asName"`
}

// wire mirrors the upstream ip-api.com JSON schema.
type wire struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Query       string  `json:"query"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Region      string  `json:"region"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	AS          string  `json:"as"`
}

// Client queries the lookup service.
type Client struct {
	baseURL string
	http    *http.Client
	group   singleflight.Group
	cache   *resultCache
}

// Option tunes a Client.
type Option func(*Client)

// WithTimeout overrides the outbound call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithCache sizes the TTL'd result cache.  Size < 1 disables caching.
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Client) {
		if size < 1 {
			c.cache = nil
			return
		}
		c.cache = newResultCache(size, ttl)
	}
}

// New builds a Client for a base URL such as "http://ip-api.com/json".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
		cache:   newResultCache(1024, time.Hour),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup maps an arbitrary caller-supplied address to a Record.
func (c *Client) Lookup(ctx context.Context, ip string) (*Record, error) {
	if !ValidAddress(ip) {
		metrics.LookupTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %q", ErrInvalidInput, ip)
	}

	if c.cache != nil {
		if rec, ok := c.cache.get(ip); ok {
			metrics.LookupTotal.WithLabelValues("cached").Inc()
			return rec, nil
		}
	}

	v, err, _ := c.group.Do(ip, func() (any, error) {
		return c.fetch(ctx, ip)
	})
	if err != nil {
		return nil, err
	}
	rec := v.(*Record)
	if c.cache != nil {
		c.cache.add(ip, rec)
	}
	return rec, nil
}

// fetch performs the single upstream round-trip.
func (c *Client) fetch(ctx context.Context, ip string) (*Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+ip, nil)
	if err != nil {
		metrics.LookupTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.LookupTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var body wire
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.LookupTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}

	if body.Status == "fail" {
		metrics.LookupTotal.WithLabelValues("miss").Inc()
		msg := body.Message
		if msg == "" {
			msg = "no result"
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, msg)
	}

	metrics.LookupTotal.WithLabelValues("ok").Inc()
	return normalize(ip, body), nil
}

// normalize maps the wire schema to the stable Record shape.
func normalize(ip string, w wire) *Record {
	region := w.RegionName
	if region == "" {
		region = w.Region
	}
	asn, asName := splitAS(w.AS)

	out := &Record{
		IP:          w.Query,
		Country:     w.Country,
		CountryCode: w.CountryCode,
		Region:      region,
		City:        w.City,
		PostalCode:  w.Zip,
		Latitude:    w.Lat,
		Longitude:   w.Lon,
		Timezone:    w.Timezone,
		ISP:         w.ISP,
		Org:         w.Org,
		ASN:         asn,
		ASName:      asName,
	}
	if out.IP == "" {
		out.IP = ip
	}
	return out
}

// splitAS divides "AS15169 Google LLC" into number and name.
func splitAS(as string) (asn, name string) {
	if as == "" {
		return "", ""
	}
	parts := strings.SplitN(as, " ", 2)
	asn = parts[0]
	if len(parts) == 2 {
		name = parts[1]
	}
	return asn, name
}

// ValidAddress applies the permissive pre-flight character class:
// digits, hex letters, dots, and colons.  It is not full address
// parsing; it only guarantees nothing else reaches the wire.
func ValidAddress(ip string) bool {
	if ip == "" {
		return false
	}
	for _, r := range ip {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		case r == '.' || r == ':':
		default:
			return false
		}
	}
	return true
}
