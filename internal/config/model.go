// internal/config/model.go
//
// Typed configuration model for ServerPlace.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                        – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `SERVERPLACE_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling, so secrets never live
// in flat files or git history.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"` — Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not set it.
package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

//
// Database section
//

// Database holds the catalog DSN.  The password portion may be a
// `vault:` reference.
type Database struct {
	DSN      string `koanf:"dsn" validate:"required"`
	MaxOpen  int    `koanf:"max_open"`
	MaxIdle  int    `koanf:"max_idle"`
}

//
// Admin section
//

// Admin configures the single back-office account and token signing.
// Password and JWTSecret are usually `vault:` references.
type Admin struct {
	Email     string `koanf:"email"      validate:"required,email"`
	Password  string `koanf:"password"   validate:"required"`
	JWTSecret string `koanf:"jwt_secret" validate:"required"`
}

//
// Notify section
//

// Notify configures lead notifications.  Either channel may be left
// blank to disable it.
type Notify struct {
	TelegramToken  string `koanf:"telegram_token"`
	TelegramChatID string `koanf:"telegram_chat_id"`
	SMTPHost       string `koanf:"smtp_host"`
	SMTPPort       int    `koanf:"smtp_port"`
	SMTPFrom       string `koanf:"smtp_from"`
	AdminEmail     string `koanf:"admin_email"`
}

//
// Geo section
//

// Geo points at an optional GeoLite2-City database used to enrich lead
// records.  Leave blank to skip geolocation.
type Geo struct {
	CityDBPath string `koanf:"city_db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime — never set in YAML or env.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Admin    Admin    `koanf:"admin"`
	Notify   Notify   `koanf:"notify"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"`
}
