// internal/ua/surfer.go
//
// uasurfer-backed classifier.
//
// This wrapper isolates the third-party github.com/avct/uasurfer API
// so the rest of the codebase never sees its enums or structs.  It
// honors the same contract and defaults as the heuristic; only the
// breadth of recognized strings differs.
package ua

import (
	"fmt"
	"strconv"
	"strings"

	surfer "github.com/avct/uasurfer"
)

// Surfer classifies via the uasurfer library.
type Surfer struct{}

// Classify implements Classifier.
func (Surfer) Classify(raw string) Info {
	u := surfer.Parse(raw)

	info := Info{
		Browser:        surferBrowser(u.Browser.Name),
		BrowserVersion: versionToString(u.Browser.Version),
		OS:             surferOS(u.OS.Name),
		OSVersion:      versionToString(u.OS.Version),
		// uasurfer does not report a rendering engine, so the engine
		// keeps the token rules shared with the heuristic.
		Engine: engineName(raw),
	}

	switch u.DeviceType {
	case surfer.DevicePhone, surfer.DeviceTablet, surfer.DeviceWearable:
		info.Device = "Mobile"
	default:
		info.Device = DefaultDevice
	}
	return info
}

// surferBrowser strips the library's "Browser" enum prefix and folds
// unrecognized families to the shared default.
func surferBrowser(n surfer.BrowserName) string {
	name := strings.TrimPrefix(n.String(), "Browser")
	if name == "" || name == "Unknown" {
		return UnknownName
	}
	return name
}

// surferOS maps the library's OS enum to the names the heuristic uses.
func surferOS(n surfer.OSName) string {
	name := strings.TrimPrefix(n.String(), "OS")
	switch name {
	case "MacOSX":
		return "macOS"
	case "WindowsPhone":
		return "Windows"
	case "", "Unknown":
		return UnknownName
	}
	return name
}

// versionToString renders a semantic version in dotted form while
// trimming trailing zeros, e.g. 17.0.0 → "17", 17.3.0 → "17.3".
func versionToString(v surfer.Version) string {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 {
		return ""
	}
	if v.Patch != 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	if v.Minor != 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return strconv.Itoa(int(v.Major))
}
