package insolation

import (
	"fmt"
	"time"

	"github.com/gridsol/insolation/internal/artifact"
	"github.com/gridsol/insolation/internal/grid"
	"github.com/gridsol/insolation/internal/snapshot"
)

// albedoFloor computes the per-pixel minimum brightness for a slot key across
// the trailing lookback window (current day plus LookbackDays prior days).
// Days without a snapshot for the slot are simply absent from the minimum.
// The result is memoized under (day, slot, "P").
func (e *Engine) albedoFloor(day time.Time, slotKey string) (*grid.Grid, error) {
	dayKey := snapshot.DayKey(day)

	if !e.params.Force {
		if cached, ok, err := artifact.GetGrid(e.store, dayKey, slotKey, artifact.KindAlbedoFloor); err != nil {
			return nil, err
		} else if ok {
			return cached, nil
		}
	}

	var history []*grid.Grid
	for back := 0; back <= e.params.LookbackDays; back++ {
		d := day.AddDate(0, 0, -back)
		g, err := e.snaps.Read(d, slotKey)
		if err != nil {
			// Missing days are expected; only the current day is required.
			if back == 0 {
				return nil, fmt.Errorf("albedo floor %s/%s: %w", dayKey, slotKey, err)
			}
			continue
		}
		history = append(history, g)
	}

	if len(history) == 1 {
		// No prior history: the floor degenerates to today's own brightness.
		// The index calculator tolerates this (X == P yields K = 1).
		e.logger.Debugf("albedo floor %s/%s: no history, using current snapshot", dayKey, slotKey)
	}

	floor, err := grid.ReduceMin(history)
	if err != nil {
		return nil, fmt.Errorf("albedo floor %s/%s: %w", dayKey, slotKey, err)
	}

	if err := artifact.PutGrid(e.store, dayKey, slotKey, artifact.KindAlbedoFloor, floor); err != nil {
		return nil, err
	}
	return floor, nil
}
