// internal/gate/lists.go
//
// Named string-match sets for client classification.
//
// Context
// -------
// Two fixed lists drive the access gate and the renderer:
//
//   • DenyList   – automation signatures rejected outright (403).
//   • CLITokens  – terminal clients that receive plain-text reports.
//
// They are separate, named, and versionable on purpose: the deny-list
// evolves with the crawler landscape, the CLI list with the tools our
// users actually run, and neither change should touch control flow.
//
// Deliberate exclusions from DenyList: curl, wget, and httpie.  Piping
// this service through a terminal is a first-class use case, so short
// generic client tokens stay allowed.
package gate

import "strings"

// DenyList holds case-insensitive substrings of known automation
// user agents: search-engine crawlers, SEO crawlers, and generic HTTP
// client libraries.
var DenyList = []string{
	// search-engine crawlers
	"googlebot",
	"bingbot",
	"yandexbot",
	"baiduspider",
	"duckduckbot",
	"slurp",
	// SEO / link crawlers
	"ahrefsbot",
	"semrushbot",
	"mj12bot",
	"dotbot",
	"petalbot",
	"facebookexternalhit",
	// generic HTTP client libraries and scrapers
	"python-requests",
	"python-urllib",
	"aiohttp",
	"go-http-client",
	"okhttp",
	"java/",
	"libwww-perl",
	"scrapy",
	"phantomjs",
	"headlesschrome",
}

// CLITokens are prefixes (case-insensitive) identifying terminal
// clients for content negotiation.
var CLITokens = []string{
	"curl",
	"wget",
	"httpie",
	"fetch",
	"powershell",
}

// MatchBot returns the matched deny-list signature, if any.
func MatchBot(userAgent string) (string, bool) {
	low := strings.ToLower(userAgent)
	for _, sig := range DenyList {
		if strings.Contains(low, sig) {
			return sig, true
		}
	}
	return "", false
}

// IsCLI reports whether the user-agent string begins with a known
// CLI-tool token.
func IsCLI(userAgent string) bool {
	low := strings.ToLower(strings.TrimSpace(userAgent))
	for _, tok := range CLITokens {
		if strings.HasPrefix(low, tok) {
			return true
		}
	}
	return false
}
