package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jpgrid/meshcache/internal/core/config"
	"github.com/jpgrid/meshcache/internal/core/health"
	"github.com/jpgrid/meshcache/internal/core/observability"
	"github.com/jpgrid/meshcache/internal/core/server"
	"github.com/jpgrid/meshcache/internal/invalidation/kafkaconsumer"
	"github.com/jpgrid/meshcache/internal/logger"
	"github.com/jpgrid/meshcache/internal/mapper/jpmeshmapper"
	"github.com/jpgrid/meshcache/internal/scenarios"
	"github.com/jpgrid/meshcache/internal/scenarios/cached"
	_ "github.com/jpgrid/meshcache/internal/scenarios/direct"
	"github.com/jpgrid/meshcache/pkg/jpmesh"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	modeFlag := flag.String("mode", "", "serving mode (direct|cached)")
	flag.Parse()

	cfg := config.FromEnv()
	if *modeFlag != "" {
		cfg.Mode = strings.TrimSpace(*modeFlag)
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Mode:      cfg.Mode,
		Component: "server",
	}, os.Stdout)

	observability.SetMode(cfg.Mode)
	observability.ExposeBuildInfo(Version)
	zl.Info().
		Str("addr", cfg.Addr).
		Str("version", Version).
		Str("mode", cfg.Mode).
		Str("level", cfg.Level.String()).
		Msg("starting meshcache server")

	mapr := jpmeshmapper.New(cfg.MaxCells)

	handler, err := scenarios.New(cfg.Mode, cfg, &zl, mapr)
	if err != nil {
		zl.Error().Err(err).Msg("mode setup failed")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ready health.ReadinessReporter
	if eng, ok := handler.(*cached.Engine); ok {
		ready = eng

		if cfg.Invalidation.Enabled {
			consumer := kafkaconsumer.New(
				kafkaconsumer.Config{
					Brokers:             splitCSV(cfg.Invalidation.Brokers),
					Topic:               cfg.Invalidation.Topic,
					GroupID:             cfg.Invalidation.GroupID,
					InitialOffsetOldest: true,
					OpTimeout:           cfg.CacheOpTimeout,
				},
				&zl, eng.Store(), mapr, eng.Local(), jpmesh.Levels(),
			)
			go func() {
				if err := consumer.Start(ctx); err != nil {
					zl.Error().Err(err).Msg("invalidation consumer stopped")
				}
			}()
		}
	}

	if err := server.Run(ctx, cfg, &zl, handler, ready); err != nil {
		zl.Error().Err(err).Msg("server exited")
		return 1
	}
	return 0
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
