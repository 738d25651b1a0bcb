// internal/lookup/lookup_test.go
//
// Unit-tests for the external lookup adapter against an httptest
// upstream.
//
// Run: go test ./internal/lookup -v

package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const successBody = `{
  "status": "success", "query": "8.8.8.8",
  "country": "United States", "countryCode": "US",
  "region": "VA", "regionName": "Virginia", "city": "Ashburn",
  "zip": "20149", "lat": 39.03, "lon": -77.5,
  "timezone": "America/New_York",
  "isp": "Google LLC", "org": "Google Public DNS",
  "as": "AS15169 Google LLC"
}`

func upstream(t *testing.T, calls *int64, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestValidAddress(t *testing.T) {
	for _, ok := range []string{"8.8.8.8", "2001:4860:4860::8888", "DEAD:beef::1"} {
		if !ValidAddress(ok) {
			t.Fatalf("ValidAddress(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "not-an-ip", "8.8.8.8;rm -rf", "example.com", "1.2.3.4 "} {
		if ValidAddress(bad) {
			t.Fatalf("ValidAddress(%q) = true", bad)
		}
	}
}

func TestLookup_Success(t *testing.T) {
	var calls int64
	srv := upstream(t, &calls, http.StatusOK, successBody)
	c := New(srv.URL, WithCache(0, 0))

	rec, err := c.Lookup(context.Background(), "8.8.8.8")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.IP != "8.8.8.8" || rec.CountryCode != "US" || rec.City != "Ashburn" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.Region != "Virginia" {
		t.Fatalf("region = %q, want full region name", rec.Region)
	}
	if rec.ASN != "AS15169" || rec.ASName != "Google LLC" {
		t.Fatalf("as split = %q / %q", rec.ASN, rec.ASName)
	}
	if calls != 1 {
		t.Fatalf("upstream calls = %d, want 1", calls)
	}
}

func TestLookup_InvalidInputMakesNoCall(t *testing.T) {
	var calls int64
	srv := upstream(t, &calls, http.StatusOK, successBody)
	c := New(srv.URL)

	_, err := c.Lookup(context.Background(), "not-an-ip")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if calls != 0 {
		t.Fatalf("upstream calls = %d, want 0", calls)
	}
}

func TestLookup_UpstreamFail(t *testing.T) {
	var calls int64
	srv := upstream(t, &calls, http.StatusOK,
		`{"status":"fail","message":"private range","query":"10.0.0.1"}`)
	c := New(srv.URL, WithCache(0, 0))

	_, err := c.Lookup(context.Background(), "10.0.0.1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLookup_TransportFailure(t *testing.T) {
	var calls int64
	srv := upstream(t, &calls, http.StatusOK, successBody)
	srv.Close() // connection refused from here on
	c := New(srv.URL, WithCache(0, 0))

	_, err := c.Lookup(context.Background(), "8.8.8.8")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestLookup_ParseFailure(t *testing.T) {
	var calls int64
	srv := upstream(t, &calls, http.StatusOK, "<html>nope</html>")
	c := New(srv.URL, WithCache(0, 0))

	_, err := c.Lookup(context.Background(), "8.8.8.8")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestLookup_CacheSuppressesSecondCall(t *testing.T) {
	var calls int64
	srv := upstream(t, &calls, http.StatusOK, successBody)
	c := New(srv.URL, WithCache(8, time.Minute))

	for i := 0; i < 3; i++ {
		if _, err := c.Lookup(context.Background(), "8.8.8.8"); err != nil {
			t.Fatalf("Lookup %d: %v", i, err)
		}
	}
	if calls != 1 {
		t.Fatalf("upstream calls = %d, want 1 (cached)", calls)
	}
}

func TestResultCache_TTLAndEviction(t *testing.T) {
	c := newResultCache(2, time.Millisecond)
	c.add("a", &Record{IP: "a"})
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.get("a"); ok {
		t.Fatal("expired entry served")
	}

	c = newResultCache(2, time.Minute)
	c.add("a", &Record{IP: "a"})
	c.add("b", &Record{IP: "b"})
	c.add("c", &Record{IP: "c"}) // evicts a
	if _, ok := c.get("a"); ok {
		t.Fatal("LRU tail not evicted")
	}
	if _, ok := c.get("c"); !ok {
		t.Fatal("latest entry missing")
	}
}
