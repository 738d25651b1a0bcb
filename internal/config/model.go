// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                     – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `NETMON_`-prefixed environment overrides – highest precedence.
//
// Secret-bearing fields (`Database.Password`, `Gate.PrivilegedToken`)
// may hold `vault:` references; main resolves those through the Vault
// client after Load, so handlers only ever see plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast
// if required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not set it.
//   • Oxford commas, two spaces after periods.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

//
// Storage sections
//

// Database holds the MySQL DSN for the visit log and the default
// counter store.  Password may be a `vault:` reference substituted
// into the DSN's %s verb.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
}

// Redis selects the alternate counter-store backend when URL is set.
type Redis struct {
	URL string `koanf:"url"`
}

//
// Gate section
//

// Gate configures the access-control pipeline.
type Gate struct {
	PrivilegedToken   string `koanf:"privileged_token"    validate:"required"`
	RateLimit         int    `koanf:"rate_limit"          validate:"gte=1"`
	RateWindowSeconds int    `koanf:"rate_window_seconds" validate:"gte=1"`
}

//
// Classification sections
//

// UA selects the user-agent classifier implementation.
type UA struct {
	Mode string `koanf:"mode" validate:"omitempty,oneof=heuristic surfer"`
}

// GeoIP enables the local GeoLite2 fallback when DBPath is set.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

// Lookup configures the third-party IP geolocation client.
type Lookup struct {
	BaseURL         string `koanf:"base_url"          validate:"required,url"`
	TimeoutSeconds  int    `koanf:"timeout_seconds"   validate:"gte=1"`
	CacheSize       int    `koanf:"cache_size"`
	CacheTTLMinutes int    `koanf:"cache_ttl_minutes"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.
type Paths struct {
	Root string // NETMON_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in
// an atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Redis    Redis    `koanf:"redis"`
	Gate     Gate     `koanf:"gate"`
	UA       UA       `koanf:"ua"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Lookup   Lookup   `koanf:"lookup"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
