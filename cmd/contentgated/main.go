// Command contentgated serves the content generation gateway.
//
// Usage:
//
//	contentgated -config /etc/contentgate/contentgate.yaml
//
// Every setting can also be supplied as a CONTENTGATE_ environment
// variable; see package config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/contentgate/auth"
	"github.com/jonwraymond/contentgate/cache"
	"github.com/jonwraymond/contentgate/config"
	"github.com/jonwraymond/contentgate/gateway"
	"github.com/jonwraymond/contentgate/health"
	"github.com/jonwraymond/contentgate/httpapi"
	"github.com/jonwraymond/contentgate/observe"
	"github.com/jonwraymond/contentgate/resilience"
	"github.com/jonwraymond/contentgate/upstream"
	"github.com/jonwraymond/contentgate/usage"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", os.Getenv("CONTENTGATE_CONFIG"), "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "contentgated:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obsCfg := cfg.ObserveConfig()
	obsCfg.Version = version
	obsCfg.Metrics.Registerer = registry
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	log := obs.Logger()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintln(os.Stderr, "contentgated: telemetry shutdown:", err)
		}
	}()

	mw, err := observe.MiddlewareFromObserver(obs, observe.WithExpectedErrors(gateway.IsValidationError))
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}

	ledger, closeLedger, err := openLedger(cfg.Ledger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeLedger(); err != nil {
			log.Warn(context.Background(), "ledger close failed", observe.F("error", err))
		}
	}()

	gen, err := upstream.NewAnthropicGenerator(cfg.AnthropicConfig())
	if err != nil {
		return err
	}

	var bulkhead *resilience.Bulkhead
	if cfg.Upstream.MaxConcurrent > 0 {
		bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: cfg.Upstream.MaxConcurrent})
	}

	responses := cache.NewMemoryCache(cfg.CachePolicy())
	svc, err := gateway.NewService(gateway.Config{
		Generator:       gen,
		Ledger:          ledger,
		Cache:           responses,
		Middleware:      mw,
		GenerateTimeout: cfg.Upstream.GenerateTimeout,
		OutlineTimeout:  cfg.Upstream.OutlineTimeout,
		Bulkhead:        bulkhead,
	})
	if err != nil {
		return err
	}

	authn, err := auth.NewJWTAuthenticator(cfg.JWTConfig(), auth.NewStaticKeyProvider([]byte(cfg.Auth.JWTSecret)))
	if err != nil {
		return err
	}
	guard := auth.NewGuard(authn, auth.NewRoleAuthorizer(cfg.Auth.Role))

	checks := health.NewAggregator()
	checks.Register(health.NewCacheChecker(responses))
	if p, ok := ledger.(health.Pinger); ok {
		checks.Register(health.NewPingChecker("ledger", p))
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := httpapi.NewRouter(httpapi.RouterConfig{
		Pipelines: svc,
		Guard:     guard,
		Logger:    log,
		Health:    checks,
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "contentgated listening",
			observe.F("addr", cfg.Server.Addr),
			observe.F("version", version),
			observe.F("ledger_driver", cfg.Ledger.Driver),
			observe.F("model", gen.Model()),
			observe.F("cache_capacity", responses.Policy().Capacity),
			observe.F("cache_ttl", responses.Policy().TTL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, failed := <-serveErr:
		if failed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openLedger returns the configured ledger and a function releasing it.
func openLedger(cfg config.LedgerConfig) (usage.Ledger, func() error, error) {
	if cfg.Driver == "memory" {
		return usage.NewMemoryLedger(), func() error { return nil }, nil
	}

	db, err := usage.OpenDB(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := usage.NewGormLedger(db)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, nil, err
	}
	return ledger, ledger.Close, nil
}
