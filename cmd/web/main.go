// cmd/web/main.go
//
// ServerPlace – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (server-wide file → conf/.env fallback happens in
//     the config loader).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Connect Vault when VAULT_ADDR is set; `vault:` config references
//     resolve through it.
//
//  4. Load and validate config, open the catalog DB, warm the GeoLite2
//     reader.
//
//  5. Assemble notifier channels, TTL cache, and the chi router
//     (public API + admin API + /metrics).
//
//  6. Serve until SIGINT/SIGTERM, then drain with a 10 s grace period.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/serverplace/serverplace/internal/cache"
	"github.com/serverplace/serverplace/internal/config"
	"github.com/serverplace/serverplace/internal/database"
	"github.com/serverplace/serverplace/internal/logger"
	"github.com/serverplace/serverplace/internal/notify"
	"github.com/serverplace/serverplace/internal/requestinfo"
	"github.com/serverplace/serverplace/internal/server"
	"github.com/serverplace/serverplace/internal/vault"
	"github.com/serverplace/serverplace/internal/web"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer logOut.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Secrets + config ────────────────────────────────────────────
	//
	var secrets config.Resolver
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err := vault.New(ctx, logOut.Infof)
		if err != nil {
			logOut.Fatalf("connect vault: %v", err)
		}
		secrets = vc
	}

	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Catalog DB ──────────────────────────────────────────────────
	//
	logOut.Info("connecting to catalog DB …")
	db, err := database.OpenWithOptions(cfg.Database.DSN, cfg.Database.MaxOpen, cfg.Database.MaxIdle)
	if err != nil {
		logOut.Fatalf("connect catalog DB: %v", err)
	}
	defer db.Close()
	logOut.Info("catalog DB online")

	if err := requestinfo.InitGeo(cfg.Geo.CityDBPath); err != nil {
		// Geo enrichment is optional; leads just lose country/city.
		logOut.Warnf("geo database unavailable: %v", err)
	}

	//
	// ── 3.  Notifications ───────────────────────────────────────────────
	//
	var channels notify.Multi
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		channels = append(channels, notify.NewTelegram(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.SMTPHost != "" && cfg.Notify.AdminEmail != "" {
		channels = append(channels,
			notify.NewEmail(cfg.Notify.SMTPHost, cfg.Notify.SMTPPort, cfg.Notify.SMTPFrom, cfg.Notify.AdminEmail))
	}
	var notifier notify.Notifier
	if len(channels) > 0 {
		notifier = channels
	} else {
		logOut.Warn("no notification channel configured")
	}

	//
	// ── 4.  HTTP surface ────────────────────────────────────────────────
	//
	ttl := cache.New()
	defer ttl.Close()

	handler := web.New(db, cfg, ttl, notifier)
	srv := server.New(cfg.HTTP.ListenAddr, handler)

	go func() {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	logOut.Info("shutting down …")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logOut.Errorf("shutdown: %v", err)
	}
	logOut.Info("bye")
}
