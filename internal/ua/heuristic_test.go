// internal/ua/heuristic_test.go
//
// Unit-tests for the token-order heuristic.
//
// Run: go test ./internal/ua -v

package ua

import "testing"

const (
	chromeMac  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.6367.60 Safari/537.36"
	firefoxWin = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0"
	safariIOS  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Mobile/15E148 Safari/604.1"
	edgeWin    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.2478.51"
	operaLinux = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 OPR/108.0.0.0"
	chromeAnd  = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.6312.80 Mobile Safari/537.36"
)

func TestClassify_BrowserOrder(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		browser string
		version string
	}{
		{"chrome", chromeMac, "Chrome", "124.0.6367.60"},
		{"firefox", firefoxWin, "Firefox", "125.0"},
		{"safari version token", safariIOS, "Safari", "17.4.1"},
		{"edge beats chrome", edgeWin, "Edge", "124.0.2478.51"},
		{"opera beats chrome", operaLinux, "Opera", "108.0.0.0"},
		{"empty", "", UnknownName, ""},
		{"gibberish", "definitely-not-a-browser", UnknownName, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Heuristic{}.Classify(tc.raw)
			if got.Browser != tc.browser {
				t.Fatalf("browser = %q, want %q", got.Browser, tc.browser)
			}
			if got.BrowserVersion != tc.version {
				t.Fatalf("version = %q, want %q", got.BrowserVersion, tc.version)
			}
		})
	}
}

func TestClassify_OSChain(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		os        string
		osVersion string
	}{
		{"windows nt", firefoxWin, "Windows", "10.0"},
		{"macos underscores", chromeMac, "macOS", "10.15.7"},
		{"android beats linux", chromeAnd, "Android", "14"},
		{"iphone beats like-macos suffix", safariIOS, "iOS", "17.4"},
		{"ipad cpu os", "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15", "iOS", "16.6"},
		{"bare linux", operaLinux, "Linux", ""},
		{"unknown", "curl/8.4.0", UnknownName, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Heuristic{}.Classify(tc.raw)
			if got.OS != tc.os {
				t.Fatalf("os = %q, want %q", got.OS, tc.os)
			}
			if got.OSVersion != tc.osVersion {
				t.Fatalf("os version = %q, want %q", got.OSVersion, tc.osVersion)
			}
		})
	}
}

func TestClassify_Engine(t *testing.T) {
	var h Heuristic

	// Firefox + Gecko token → Gecko; AppleWebKit without that combination
	// → Blink, even though Chrome UAs say "like Gecko".
	if got := h.Classify(firefoxWin).Engine; got != "Gecko" {
		t.Fatalf("firefox engine = %q, want Gecko", got)
	}
	for _, raw := range []string{chromeMac, safariIOS, edgeWin, operaLinux} {
		if got := h.Classify(raw).Engine; got != "Blink" {
			t.Fatalf("engine for %q = %q, want Blink", raw, got)
		}
	}
	if got := h.Classify("curl/8.4.0").Engine; got != UnknownName {
		t.Fatalf("cli engine = %q, want %q", got, UnknownName)
	}
}

func TestClassify_Device(t *testing.T) {
	cases := []struct {
		raw    string
		device string
	}{
		{chromeMac, "Desktop"},
		{firefoxWin, "Desktop"},
		{safariIOS, "Mobile"},
		{chromeAnd, "Mobile"},
		{"Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X)", "Mobile"},
		{"", "Desktop"},
	}
	var h Heuristic
	for _, tc := range cases {
		if got := h.Classify(tc.raw).Device; got != tc.device {
			t.Fatalf("device for %q = %q, want %q", tc.raw, got, tc.device)
		}
	}
}

func TestLabels_TrimWhenVersionEmpty(t *testing.T) {
	info := Info{Browser: UnknownName, OS: "Linux"}
	if got := info.BrowserLabel(); got != UnknownName {
		t.Fatalf("browser label = %q, want %q", got, UnknownName)
	}
	if got := info.OSLabel(); got != "Linux" {
		t.Fatalf("os label = %q, want Linux", got)
	}
	info = Info{Browser: "Chrome", BrowserVersion: "124.0"}
	if got := info.BrowserLabel(); got != "Chrome 124.0" {
		t.Fatalf("browser label = %q", got)
	}
}

func TestNew_ModeSelection(t *testing.T) {
	if _, ok := New("surfer").(Surfer); !ok {
		t.Fatal("mode surfer did not select the uasurfer classifier")
	}
	if _, ok := New("heuristic").(Heuristic); !ok {
		t.Fatal("mode heuristic did not select the heuristic")
	}
	if _, ok := New("").(Heuristic); !ok {
		t.Fatal("empty mode did not fall back to the heuristic")
	}
}
