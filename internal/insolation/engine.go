// Package insolation implements the temporal integration and cloud-correction
// engine: it turns an ordered sequence of per-slot brightness snapshots into
// a running clear-sky index, a running cloud-corrected insolation total, and
// a finalized daily total once a post-sunset observation is available.
package insolation

import (
	"time"

	"github.com/gridsol/insolation/internal/artifact"
	"github.com/gridsol/insolation/internal/snapshot"
	"go.uber.org/zap"
)

// Params holds the tunable pipeline options.
type Params struct {
	// Interval is the expected minutes between slots (acquisition planning).
	Interval int
	// LookbackDays is the number of prior days in the albedo floor window;
	// the window always includes the current day as well.
	LookbackDays int
	// Force bypasses every idempotency check and recomputes all artifacts.
	Force bool
	// Retain keeps intermediate artifacts after a day is finalized.
	Retain bool
}

// Engine drives the per-slot integration for one or more days. All derived
// artifacts are memoized in the store; reruns skip already-computed slots
// unless forced.
type Engine struct {
	store  artifact.Store
	snaps  snapshot.Provider
	oracle Oracle
	params Params
	logger *zap.SugaredLogger

	// sun windows are computed once per day and cached for the run
	windows map[string][2]int
}

// NewEngine assembles an engine over the given collaborators.
func NewEngine(store artifact.Store, snaps snapshot.Provider, oracle Oracle, params Params, logger *zap.SugaredLogger) *Engine {
	if params.Interval <= 0 {
		params.Interval = 20
	}
	if params.LookbackDays < 0 {
		params.LookbackDays = 14
	}
	return &Engine{
		store:   store,
		snaps:   snaps,
		oracle:  oracle,
		params:  params,
		logger:  logger,
		windows: make(map[string][2]int),
	}
}

// sunWindow returns the cached (sunrise, sunset) minutes for a day.
func (e *Engine) sunWindow(day time.Time) (int, int, error) {
	key := snapshot.DayKey(day)
	if w, ok := e.windows[key]; ok {
		return w[0], w[1], nil
	}
	sunrise, sunset, err := e.oracle.SunWindow(day)
	if err != nil {
		return 0, 0, err
	}
	e.windows[key] = [2]int{sunrise, sunset}
	e.logger.Debugf("sun window for %s: sunrise=%d sunset=%d", key, sunrise, sunset)
	return sunrise, sunset, nil
}

// ExpectedSlots returns the idealized acquisition slots for a day, for use by
// the external image prefetcher.
func (e *Engine) ExpectedSlots(day time.Time) ([]string, error) {
	sunrise, sunset, err := e.sunWindow(day)
	if err != nil {
		return nil, err
	}
	return EnumerateSlots(sunrise, sunset, e.params.Interval), nil
}
