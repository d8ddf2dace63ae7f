// cmd/web/main.go
//
// FormRelayer – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (host-wide file → .env fallback).
//
//  2. Load and validate the typed config (YAML + FR_ env overlays).
//
//  3. Start daily rotating logger (tees to console when running in a TTY).
//
//  4. Resolve `vault:` references in the config (DB password, SMTP
//     password, admin token).  A missing Vault server is fatal only when
//     the config actually references it.
//
//  5. Open the database, run idempotent migrations, and warm the GeoIP
//     reader when a database path is configured.
//
//  6. Build the service graph: repositories → form cache → rate limiter,
//     reCAPTCHA client, mailer, webhook dispatcher → submission processor.
//
//  7. Hand the shared services to every registered component and mount
//     each component's router at its mount path.
//
//  8. Serve with hardened timeouts; SIGINT/SIGTERM drains in-flight
//     requests before exit.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/formrelayer/formrelayer/internal/component"
	"github.com/formrelayer/formrelayer/internal/config"
	"github.com/formrelayer/formrelayer/internal/database"
	"github.com/formrelayer/formrelayer/internal/form"
	"github.com/formrelayer/formrelayer/internal/hooks"
	"github.com/formrelayer/formrelayer/internal/logger"
	"github.com/formrelayer/formrelayer/internal/mailer"
	"github.com/formrelayer/formrelayer/internal/middleware"
	"github.com/formrelayer/formrelayer/internal/ratelimit"
	"github.com/formrelayer/formrelayer/internal/recaptcha"
	"github.com/formrelayer/formrelayer/internal/requestinfo"
	"github.com/formrelayer/formrelayer/internal/server"
	"github.com/formrelayer/formrelayer/internal/settings"
	"github.com/formrelayer/formrelayer/internal/submission"
	"github.com/formrelayer/formrelayer/internal/vault"

	_ "github.com/formrelayer/formrelayer/components/admin" // builder UI + admin API
	_ "github.com/formrelayer/formrelayer/components/forms" // public pages + submit endpoint
)

const serverEnvPath = "/usr/local/etc/formrelayer/global.env"

// loadEnv prefers the host-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	sugar, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = sugar.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Vault-backed secrets ────────────────────────────────────────
	//
	if err := resolveSecrets(ctx, cfg); err != nil {
		sugar.Fatalw("resolve secrets", "err", err)
	}

	//
	// ── 2.  Database connect + migrate ──────────────────────────────────
	//
	dsn := strings.ReplaceAll(cfg.Database.DSN, "{password}", cfg.Database.Password)
	sugar.Infow("connecting to database")
	db, err := database.Open(dsn)
	if err != nil {
		sugar.Fatalw("connect database", "err", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		sugar.Fatalw("migrate database", "err", err)
	}
	sugar.Infow("database online")

	if err := requestinfo.InitGeo(cfg.Geo.GeoIPDB); err != nil {
		// Geo tagging is best effort; submissions just lose the country code.
		sugar.Warnw("geoip unavailable", "path", cfg.Geo.GeoIPDB, "err", err)
	}

	//
	// ── 3.  Service graph ───────────────────────────────────────────────
	//
	formRepo := form.NewRepository(db)
	formCache := form.NewCache(formRepo, 10*time.Minute)
	defer formCache.Close()

	subRepo := submission.NewRepository(db)
	settingsRepo := settings.NewRepository(db)

	limiter := ratelimit.New()
	defer limiter.Close()

	var sender mailer.Sender
	if cfg.SMTP.Host != "" {
		sender = mailer.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	} else {
		sugar.Infow("no SMTP host configured, emails will be logged")
		sender = mailer.LogSender{}
	}
	composer := mailer.NewComposer(sender)

	dispatcher := hooks.NewDispatcher(cfg.Hooks.WebhookURLs)

	processor := submission.NewProcessor(subRepo, limiter, recaptcha.New(), composer, dispatcher)

	deps := component.Deps{
		Config:      cfg,
		DB:          db,
		Forms:       formRepo,
		FormCache:   formCache,
		Submissions: subRepo,
		Settings:    settingsRepo,
		Processor:   processor,
	}

	//
	// ── 4.  Router: shared middleware → components → metrics ───────────
	//
	r := chi.NewRouter()
	r.Use(requestinfo.Enrich)
	r.Use(middleware.Security)

	for _, comp := range component.All() {
		if err := comp.Init(deps); err != nil {
			sugar.Fatalw("component init failed", "component", comp.Name(), "err", err)
		}
		r.Mount(comp.MountPath(), comp.Routes())
		sugar.Infow("component mounted", "component", comp.Name(), "path", comp.MountPath())
	}

	r.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(handler)
	}

	//
	// ── 5.  Serve until signalled ───────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, handler)

	go func() {
		sugar.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("http server", "err", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("shutdown", "err", err)
	}
}

// resolveSecrets swaps `vault:` references for their secret values.  The
// Vault client is only constructed when at least one reference exists, so
// dev setups without Vault keep working.
func resolveSecrets(ctx context.Context, cfg *config.Config) error {
	refs := []*string{
		&cfg.Database.Password,
		&cfg.SMTP.Password,
		&cfg.Admin.Token,
	}

	needVault := false
	for _, ref := range refs {
		if strings.HasPrefix(*ref, vault.Prefix) {
			needVault = true
			break
		}
	}
	if !needVault {
		return nil
	}

	vc, err := vault.New(ctx, zap.S().Infof)
	if err != nil {
		return err
	}
	return vc.ResolveAll(ctx, refs...)
}
