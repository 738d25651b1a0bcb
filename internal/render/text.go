// internal/render/text.go
//
// Fixed-width plain-text report.
//
// Each line is a right-aligned 12-column label, two spaces, then the
// value.  Absent values (the intentionally-undefaulted latitude,
// longitude, and colo) render as an em-dash placeholder rather than
// disappearing, so the report shape is stable across requests.
package render

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/nos486/netmon/internal/snapshot"
)

const (
	labelWidth  = 12
	placeholder = "—"
)

// Text writes the multi-section report for s.
func Text(w http.ResponseWriter, s snapshot.Snapshot) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(TextReport(s)))
}

// TextReport renders the report body.  Split out for tests.
func TextReport(s snapshot.Snapshot) string {
	var b strings.Builder

	section(&b, "NETWORK", []row{
		{"IP", s.Network.IP},
		{"ISP", s.Network.ISP},
		{"ASN", s.Network.ASN},
		{"Protocol", s.Network.Protocol},
	})
	section(&b, "LOCATION", []row{
		{"Country", s.Identity.Country},
		{"City", s.Identity.City},
		{"Region", s.Identity.Region},
		{"Metro Code", s.Identity.MetroCode},
		{"Timezone", s.Identity.Timezone},
		{"Latitude", s.Identity.Latitude},
		{"Longitude", s.Identity.Longitude},
		{"Colo", s.Identity.Colo},
	})
	section(&b, "CLIENT", []row{
		{"Browser", s.Client.Browser},
		{"OS", s.Client.OS},
		{"Engine", s.Client.Engine},
		{"Device", s.Client.Device},
		{"User Agent", s.Client.UserAgent},
	})
	section(&b, "SECURITY", []row{
		{"TLS Version", s.Security.TLSVersion},
		{"TLS Cipher", s.Security.TLSCipher},
		{"Threat Score", s.Security.ThreatScore},
		{"Protocol", s.Security.HTTPProtocol},
	})

	return strings.TrimSuffix(b.String(), "\n")
}

type row struct {
	label string
	value string
}

func section(b *strings.Builder, name string, rows []row) {
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(name)
	b.WriteByte('\n')
	for _, r := range rows {
		val := r.value
		if val == "" {
			val = placeholder
		}
		fmt.Fprintf(b, "%*s  %s\n", labelWidth, r.label, val)
	}
}
