// Command rwyselect picks active runways from current METARs and writes them
// to the .rwy files in RWY_DIR. With RUN_INTERVAL unset it runs one cycle and
// exits; otherwise it keeps running and serves health, metrics, and decision
// history over HTTP.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/runway-selector/internal/adapter/console"
	httpadapter "github.com/couchcryptid/runway-selector/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/runway-selector/internal/adapter/kafka"
	"github.com/couchcryptid/runway-selector/internal/adapter/metar"
	"github.com/couchcryptid/runway-selector/internal/adapter/rwyfile"
	"github.com/couchcryptid/runway-selector/internal/adapter/sectorfile"
	"github.com/couchcryptid/runway-selector/internal/adapter/sqlite"
	"github.com/couchcryptid/runway-selector/internal/config"
	"github.com/couchcryptid/runway-selector/internal/domain"
	"github.com/couchcryptid/runway-selector/internal/observability"
	"github.com/couchcryptid/runway-selector/internal/pipeline"
)

// metarCacheSize bounds the per-airport METAR cache.
const metarCacheSize = 512

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("runway selector failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	geometry, err := sectorfile.LoadFile(cfg.RunwayFile, domain.DefaultPreferredRunways())
	if err != nil {
		return err
	}
	logger.Info("runway geometry loaded", "file", cfg.RunwayFile, "airports", len(geometry.Airports()))

	source := newSource(cfg, logger, metrics)

	var prompter domain.OperatorPrompter
	if cfg.OperatorPrompt {
		prompter = console.NewPrompter(os.Stdin, os.Stdout)
	} else {
		logger.Info("operator prompt disabled, ENGM needs steady wind and good visibility")
	}
	resolver := pipeline.NewResolver(prompter, metrics, logger)

	rwy := rwyfile.NewWriter(cfg.RwyDir, logger)
	files, err := rwy.Files()
	if err != nil {
		return err
	}
	logger.Info("rwy files found", "dir", cfg.RwyDir, "count", len(files))

	loaders := []pipeline.Loader{rwy}
	var closers []io.Closer

	var history *sqlite.History
	if cfg.HistoryDB != "" {
		history, err = sqlite.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		loaders = append(loaders, history)
		closers = append(closers, history)
		logger.Info("selection history enabled", "path", cfg.HistoryDB)
	}

	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, writer)
		closers = append(closers, writer)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Error("close sink", "error", err)
			}
		}
	}()

	p := pipeline.New(source, geometry, resolver, pipeline.Loaders(loaders...), pipeline.Options{
		Airports:     cfg.Airports,
		Ignored:      cfg.IgnoredAirports,
		FetchRetries: cfg.FetchRetries,
	}, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RunInterval <= 0 {
		return p.Run(ctx, 0)
	}

	var historyReader httpadapter.HistoryReader
	if history != nil {
		historyReader = history
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, historyReader, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start selection loop.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx, cfg.RunInterval); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}

	logger.Info("shutdown complete")
	return nil
}

func newSource(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) metar.Source {
	var src metar.Source
	if cfg.METARFile != "" {
		src = metar.NewFileSource(cfg.METARFile)
		logger.Info("reading metars from file", "path", cfg.METARFile)
	} else {
		src = metar.NewClient(cfg.METARURL, cfg.METARRegion, cfg.METARExtraAirports, cfg.METARTimeout, logger)
	}
	if cfg.METARCacheTTL > 0 {
		src = metar.NewCachedSource(src, metarCacheSize, cfg.METARCacheTTL, metrics)
		logger.Info("metar cache enabled", "ttl", cfg.METARCacheTTL)
	}
	return src
}
