// Package app wires the configuration, artifact store, oracle, engine and
// optional publishing/REST components into a runnable application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gridsol/insolation/internal/artifact"
	"github.com/gridsol/insolation/internal/controllers/restserver"
	"github.com/gridsol/insolation/internal/insolation"
	"github.com/gridsol/insolation/internal/log"
	"github.com/gridsol/insolation/internal/snapshot"
	"github.com/gridsol/insolation/internal/storage"
	"github.com/gridsol/insolation/internal/storage/timescaledb"
	"github.com/gridsol/insolation/pkg/config"
	"github.com/gridsol/insolation/pkg/solar"
	"go.uber.org/zap"
)

// Options are the per-run flags from the command line.
type Options struct {
	Day    time.Time
	Force  bool
	Retain bool
	Serve  bool // keep the REST server running after the day is processed
}

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run processes one day and blocks serving the REST API if configured.
func (a *App) Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := artifact.NewSQLiteStore(a.cfg.Pipeline.ArtifactDB)
	if err != nil {
		return fmt.Errorf("opening artifact store: %w", err)
	}
	defer store.Close()

	snaps, err := snapshot.NewDirProvider(a.cfg.Pipeline.SnapshotDir, a.cfg.Pipeline.Pattern)
	if err != nil {
		return fmt.Errorf("snapshot provider: %w", err)
	}

	oracle := insolation.SiteOracle{Site: solar.Site{
		Latitude:  a.cfg.Site.Latitude,
		Longitude: a.cfg.Site.Longitude,
		Elevation: a.cfg.Site.Elevation,
		Turbidity: a.cfg.Site.Turbidity,
		TZOffset:  a.cfg.Site.TZOffsetMinutes,
	}}

	params := insolation.Params{
		Interval:     a.cfg.Pipeline.IntervalMinutes,
		LookbackDays: *a.cfg.Pipeline.LookbackDays,
		Force:        opts.Force,
		Retain:       opts.Retain || a.cfg.Pipeline.Retain,
	}

	engine := insolation.NewEngine(store, snaps, oracle, params, a.logger)

	if expected, err := engine.ExpectedSlots(opts.Day); err == nil {
		a.logger.Debugf("expected acquisition slots for %s: %v", snapshot.DayKey(opts.Day), expected)
	}

	total, finalized, err := engine.Run(ctx, opts.Day)
	if err != nil {
		return fmt.Errorf("integration run for %s: %w", snapshot.DayKey(opts.Day), err)
	}

	if finalized {
		if err := a.publish(ctx, total); err != nil {
			// Publishing is best-effort; the artifact cache holds the totals.
			a.logger.Warnf("publishing daily total: %v", err)
		}
	} else {
		a.logger.Infof("day %s not finalized yet; rerun after a post-sunset snapshot arrives",
			snapshot.DayKey(opts.Day))
	}

	if a.cfg.REST != nil && opts.Serve {
		return a.serve(ctx, cancel, store)
	}
	return nil
}

// publish sends a finalized total to the configured sink, if any.
func (a *App) publish(ctx context.Context, total *insolation.DailyTotal) error {
	if a.cfg.Storage.TimescaleDB == nil {
		return nil
	}
	var sink storage.DailyTotalSink
	sink, err := timescaledb.New(ctx, a.cfg.Storage.TimescaleDB.ConnectionString)
	if err != nil {
		return err
	}
	defer sink.Close()
	return sink.Publish(ctx, total)
}

// serve runs the REST read API until a shutdown signal arrives.
func (a *App) serve(ctx context.Context, cancel context.CancelFunc, store artifact.Store) error {
	var wg sync.WaitGroup

	rest := restserver.New(store, a.cfg.REST.ListenAddr, a.logger)
	rest.Start(ctx, &wg)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	cancel()
	wg.Wait()
	log.Info("shutdown complete")
	return nil
}
