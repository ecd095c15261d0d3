// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `conf/.env` dotenv file.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `SERVERPLACE_`, where `__` maps to
     “.” (e.g., `SERVERPLACE_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
secret fields with a `vault:` prefix are resolved, the result is
validated, enriched with the runtime root path, and cached in an
`atomic.Pointer` for lock-free reads.  `Reload()` calls `Load()` again
and swaps the pointer.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`,
    so `go run ./cmd/web` works from any sub-directory.
  • Vault resolution is optional: when no resolver is registered,
    `vault:` values are a configuration error only if present.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var current atomic.Pointer[Config]

// Resolver expands secret references (see internal/vault.Resolve).  A
// nil resolver treats any remaining `vault:` value as a hard error.
type Resolver interface {
	Resolve(ctx context.Context, v string) (string, error)
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves SERVERPLACE_ROOT or climbs directories until
// conf/global.yaml is found.
func rootDir() string {
	if r := os.Getenv("SERVERPLACE_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets, validates,
// and caches the Config.
func Load(ctx context.Context, secrets Resolver) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}

	// Env overrides: SERVERPLACE_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("SERVERPLACE_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, secrets, &cfg); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveSecrets expands every field that may carry a `vault:` value.
func resolveSecrets(ctx context.Context, r Resolver, cfg *Config) error {
	fields := []*string{
		&cfg.Database.DSN,
		&cfg.Admin.Password,
		&cfg.Admin.JWTSecret,
		&cfg.Notify.TelegramToken,
	}
	for _, f := range fields {
		if !strings.HasPrefix(*f, "vault:") {
			continue
		}
		if r == nil {
			return fmt.Errorf("value %q needs Vault but no resolver is configured", *f)
		}
		v, err := r.Resolve(ctx, *f)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }

func Reload(ctx context.Context, secrets Resolver) error {
	_, err := Load(ctx, secrets)
	return err
}
