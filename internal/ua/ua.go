// internal/ua/ua.go
//
// User-Agent classification types.
//
// Context
// -------
// Two interchangeable classifiers produce the same Info shape: the
// default token-order heuristic in heuristic.go, and a richer parser
// backed by github.com/avct/uasurfer in surfer.go.  Callers select one
// at boot via New(mode); nothing outside this package sees the
// uasurfer enums.
//
// Every input, including the empty string, yields a fully populated
// Info.  Unclassified browsers and operating systems report "Unknown",
// unclassified devices report "Desktop", unclassified engines report
// "Unknown".
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package ua

import "strings"

// Default values for unclassifiable input.
const (
	UnknownName   = "Unknown"
	DefaultDevice = "Desktop"
)

// Info is the normalized client descriptor.
type Info struct {
	Browser        string // "Chrome", "Firefox", "Safari", ...
	BrowserVersion string // "124.0.6367", possibly empty
	OS             string // "Windows", "macOS", "Android", "iOS", "Linux"
	OSVersion      string // "10.15.7", underscores normalized to dots
	Engine         string // "Gecko", "Blink", or "Unknown"
	Device         string // "Mobile" or "Desktop"
}

// BrowserLabel renders "<name> <version>" with surrounding whitespace
// trimmed when the version is empty.
func (i Info) BrowserLabel() string {
	return strings.TrimSpace(i.Browser + " " + i.BrowserVersion)
}

// OSLabel renders "<name> <version>" with surrounding whitespace
// trimmed when the version is empty.
func (i Info) OSLabel() string {
	return strings.TrimSpace(i.OS + " " + i.OSVersion)
}

// Classifier turns a raw User-Agent header into an Info.
// Implementations are pure and never fail.
type Classifier interface {
	Classify(raw string) Info
}

// New returns the classifier for the configured mode.  "surfer"
// selects the uasurfer-backed parser; anything else selects the
// heuristic.
func New(mode string) Classifier {
	if strings.EqualFold(mode, "surfer") {
		return Surfer{}
	}
	return Heuristic{}
}
