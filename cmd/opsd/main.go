// SPDX-License-Identifier: MIT

// opsd serves the genutil operational endpoints: health checks, Prometheus
// metrics, runtime log levels and a masked view of the effective
// configuration. It doubles as a reference for wiring the conf, log, memo
// and ops packages together.
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

	"github.com/ManuGH/genutil/conf"
	"github.com/ManuGH/genutil/log"
	"github.com/ManuGH/genutil/memo"
	"github.com/ManuGH/genutil/ops"
)

var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("opsd %s\n", version)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Precedence: env > file > defaults (earlier providers win).
	providers := []conf.Provider{conf.NewEnv("OPSD_")}
	if *configPath != "" {
		file, err := conf.NewFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config %s: %v\n", *configPath, err)
			os.Exit(1)
		}
		providers = append(providers, file)

		watcher := conf.NewWatcher(file)
		if err := watcher.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "watch config: %v\n", err)
			os.Exit(1)
		}
	}
	providers = append(providers, conf.NewMap("defaults", map[string]any{
		"listen":     ":9090",
		"log.level":  "info",
		"rate.limit": 300,
	}))
	cfg := conf.New("opsd", providers...)

	log.Configure(log.Config{
		Level:   cfg.String("log.level", "info"),
		Service: "opsd",
	})
	logger := log.WithComponent("opsd")

	cache := memo.NewMemory(time.Minute)
	defer cache.Close() //nolint:errcheck

	router := ops.Router(ops.Options{
		Config:    cfg.ReadOnly(),
		RateLimit: cfg.Int("rate.limit", 300),
		HealthChecks: map[string]ops.HealthCheck{
			"cache": func(ctx context.Context) error {
				cache.Set(ctx, "healthcheck", []byte("ok"), time.Second)
				if _, ok := cache.Get(ctx, "healthcheck"); !ok {
					return errors.New("cache write/read failed")
				}
				return nil
			},
		},
	})

	addr := cfg.String("listen", ":9090")
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("version", version).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}
}
