// internal/ua/heuristic.go
//
// Token-order User-Agent heuristic.
//
// Context
// -------
// Resolution order is load-bearing.  Chromium-based browsers ship
// Safari and AppleWebKit tokens for compatibility, Edge and Opera ship
// Chrome tokens, and Safari itself carries its version in a separate
// "Version/" token.  Evaluating Edge → Opera → Chrome → Firefox →
// Safari first-match-wins resolves every such multi-match string to
// the most specific family.
//
// The OS chain works the same way: Windows NT → iOS → macOS → Android
// → Linux.  iOS UAs all carry a "like Mac OS X" suffix, so the iOS
// tokens must be tested before macOS; Android UAs also contain
// "Linux", so Android must come before Linux.  iOS and macOS version
// tokens use underscores, which are normalized to dots.
package ua

import "strings"

// Heuristic is the default, dependency-free classifier.
type Heuristic struct{}

// Classify implements Classifier.
func (Heuristic) Classify(raw string) Info {
	return Info{
		Browser:        browserName(raw),
		BrowserVersion: browserVersion(raw),
		OS:             osName(raw),
		OSVersion:      osVersion(raw),
		Engine:         engineName(raw),
		Device:         deviceType(raw),
	}
}

/*──────────────────────────── browser ──────────────────────────────────────*/

func browserName(raw string) string {
	switch {
	case contains(raw, "Edg/"), contains(raw, "Edge/"):
		return "Edge"
	case contains(raw, "OPR/"), contains(raw, "Opera"):
		return "Opera"
	case contains(raw, "Chrome/"):
		return "Chrome"
	case contains(raw, "Firefox/"):
		return "Firefox"
	case contains(raw, "Safari/") && contains(raw, "Version/"):
		return "Safari"
	}
	return UnknownName
}

func browserVersion(raw string) string {
	switch browserName(raw) {
	case "Edge":
		if v := tokenAfter(raw, "Edg/"); v != "" {
			return v
		}
		return tokenAfter(raw, "Edge/")
	case "Opera":
		if v := tokenAfter(raw, "OPR/"); v != "" {
			return v
		}
		return tokenAfter(raw, "Opera/")
	case "Chrome":
		return tokenAfter(raw, "Chrome/")
	case "Firefox":
		return tokenAfter(raw, "Firefox/")
	case "Safari":
		// Safari reports its real version in the Version/ token.
		return tokenAfter(raw, "Version/")
	}
	return ""
}

/*──────────────────────────── OS ───────────────────────────────────────────*/

func osName(raw string) string {
	switch {
	case contains(raw, "Windows NT"):
		return "Windows"
	case contains(raw, "iPhone OS"), contains(raw, "CPU OS"):
		return "iOS"
	case contains(raw, "Mac OS X"):
		return "macOS"
	case contains(raw, "Android"):
		return "Android"
	case contains(raw, "Linux"):
		return "Linux"
	}
	return UnknownName
}

func osVersion(raw string) string {
	switch osName(raw) {
	case "Windows":
		return versionAfter(raw, "Windows NT ")
	case "macOS":
		return dots(versionAfter(raw, "Mac OS X "))
	case "Android":
		return versionAfter(raw, "Android ")
	case "iOS":
		if v := versionAfter(raw, "iPhone OS "); v != "" {
			return dots(v)
		}
		return dots(versionAfter(raw, "CPU OS "))
	}
	return ""
}

/*──────────────────────────── engine, device ───────────────────────────────*/

func engineName(raw string) string {
	switch {
	case contains(raw, "Gecko/") && contains(raw, "Firefox"):
		return "Gecko"
	case contains(raw, "AppleWebKit"):
		return "Blink"
	}
	return UnknownName
}

var mobileTokens = []string{"Mobile", "Android", "iPhone", "iPad"}

func deviceType(raw string) string {
	for _, tok := range mobileTokens {
		if contains(raw, tok) {
			return "Mobile"
		}
	}
	return DefaultDevice
}

/*──────────────────────────── token helpers ────────────────────────────────*/

func contains(raw, tok string) bool {
	return strings.Contains(strings.ToLower(raw), strings.ToLower(tok))
}

// tokenAfter returns the run of non-space characters following marker,
// matched case-insensitively.  Empty when the marker is absent.
func tokenAfter(raw, marker string) string {
	low := strings.ToLower(raw)
	i := strings.Index(low, strings.ToLower(marker))
	if i == -1 {
		return ""
	}
	rest := raw[i+len(marker):]
	if j := strings.IndexAny(rest, " ;)"); j != -1 {
		rest = rest[:j]
	}
	return rest
}

// versionAfter returns the version-shaped run (digits, dots, and
// underscores) following marker.
func versionAfter(raw, marker string) string {
	tok := tokenAfter(raw, marker)
	end := len(tok)
	for i, r := range tok {
		if (r < '0' || r > '9') && r != '.' && r != '_' {
			end = i
			break
		}
	}
	return tok[:end]
}

func dots(v string) string { return strings.ReplaceAll(v, "_", ".") }
