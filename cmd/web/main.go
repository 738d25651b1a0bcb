// cmd/web/main.go
//
// netmon – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (system-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load layered configuration (.env → conf/global.yaml → NETMON_*
//     env overrides) and resolve any vault: secret references.
//
//  4. Open MySQL (visit log + default counter store); open Redis for
//     the counter store instead when redis.url is configured.
//
//  5. Open the local GeoLite2 database when geoip.db_path is set.
//
//  6. Wire the handler graph (classifier, visit recorder, lookup
//     client, gate) and serve until SIGINT/SIGTERM, then drain.
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

	"github.com/joho/godotenv"

	"github.com/nos486/netmon/internal/config"
	"github.com/nos486/netmon/internal/database"
	"github.com/nos486/netmon/internal/edge"
	"github.com/nos486/netmon/internal/gate"
	"github.com/nos486/netmon/internal/logger"
	"github.com/nos486/netmon/internal/lookup"
	"github.com/nos486/netmon/internal/server"
	"github.com/nos486/netmon/internal/ua"
	"github.com/nos486/netmon/internal/vault"
	"github.com/nos486/netmon/internal/visitlog"
	"github.com/nos486/netmon/internal/web"
)

const serverEnvPath = "/usr/local/etc/netmon/global.env"

// loadEnv prefers the system-wide env file; on dev it falls back to .env.
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

// needsVault reports whether any secret-bearing field carries a
// vault: reference, so we only dial Vault when actually used.
func needsVault(cfg *config.Config) bool {
	return strings.HasPrefix(cfg.Gate.PrivilegedToken, vault.RefPrefix) ||
		strings.HasPrefix(cfg.Database.Password, vault.RefPrefix)
}

func init() { loadEnv() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer logOut.Sync() //nolint:errcheck

	//
	// ── 1.  Configuration ───────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	var vc *vault.Client
	if needsVault(cfg) {
		if vc, err = vault.New(ctx); err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
		logOut.Infow("vault client online")
	}
	if err := config.ResolveSecrets(ctx, cfg, vc); err != nil {
		logOut.Fatalf("resolve secrets: %v", err)
	}

	//
	// ── 2.  Storage ─────────────────────────────────────────────────────
	//
	logOut.Infow("connecting to MySQL")
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		logOut.Fatalf("connect MySQL: %v", err)
	}
	defer db.Close()
	logOut.Infow("MySQL online")

	var store gate.CounterStore = gate.NewSQLCounterStore(db)
	if cfg.Redis.URL != "" {
		rdb, err := database.OpenRedis(cfg.Redis.URL)
		if err != nil {
			logOut.Fatalf("connect Redis: %v", err)
		}
		defer rdb.Close()
		store = gate.NewRedisCounterStore(rdb)
		logOut.Infow("Redis online", "role", "counter store")
	}

	var geo *edge.GeoDB
	if cfg.GeoIP.DBPath != "" {
		if geo, err = edge.OpenGeo(cfg.GeoIP.DBPath); err != nil {
			logOut.Fatalf("open GeoLite2 db: %v", err)
		}
		defer geo.Close()
		logOut.Infow("GeoLite2 enrichment enabled", "path", cfg.GeoIP.DBPath)
	}

	//
	// ── 3.  Collaborators ───────────────────────────────────────────────
	//
	visits := visitlog.New(db)
	defer visits.Close()

	resolver := lookup.New(cfg.Lookup.BaseURL,
		lookup.WithTimeout(time.Duration(cfg.Lookup.TimeoutSeconds)*time.Second),
		lookup.WithCache(cfg.Lookup.CacheSize,
			time.Duration(cfg.Lookup.CacheTTLMinutes)*time.Minute),
	)

	handler := web.New(web.Options{
		Classifier: ua.New(cfg.UA.Mode),
		Geo:        geo,
		Visits:     visits,
		Resolver:   resolver,
		Store:      store,
		Token:      cfg.Gate.PrivilegedToken,
		Limit:      cfg.Gate.RateLimit,
		Window:     time.Duration(cfg.Gate.RateWindowSeconds) * time.Second,
	})

	//
	// ── 4.  Serve until signalled, then drain ───────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, handler.Routes())

	errCh := make(chan error, 1)
	go func() {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logOut.Infow("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logOut.Fatalf("http server: %v", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logOut.Errorw("graceful shutdown failed", "error", err)
	}
	logOut.Infow("server stopped")
}
