// internal/config/model.go
//
// Typed configuration model for FormRelayer.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                      – dotenv values,
//   • `conf/global.yaml`                   – primary static file,
//   • `FR_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling (see vault.ResolveConfig),
// so running code only ever sees plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.  BaseURL is the externally visible origin
// used in embed snippets and emails.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	BaseURL    string `koanf:"base_url"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host, port,
// or flags without touching Vault.  The *secret* portion (`Password`) is
// stored in Vault and injected at runtime, keeping credentials out of flat
// files and git history.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

//
// SMTP section
//

// SMTP configures outbound email.  An empty Host selects the log-only
// sender, which is the right default for development.
type SMTP struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

//
// Admin section
//

// Admin controls access to the builder API.  Token is compared in constant
// time on every admin request; it belongs in Vault or the environment, not
// in YAML.
type Admin struct {
	Token string `koanf:"token" validate:"required,min=16"`
}

//
// Hooks section
//

// Hooks lists webhook URLs notified after each stored submission.
type Hooks struct {
	WebhookURLs []string `koanf:"webhook_urls"`
}

//
// Geo section
//

// Geo points at an optional MaxMind database used to tag submissions with a
// country code.  Empty path disables the lookup.
type Geo struct {
	GeoIPDB string `koanf:"geoip_db"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or FR_ROOT override) so later code can build
// absolute file paths.
type Paths struct {
	Root string // FR_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	SMTP     SMTP     `koanf:"smtp"`
	Admin    Admin    `koanf:"admin"`
	Hooks    Hooks    `koanf:"hooks"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
