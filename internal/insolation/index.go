package insolation

import (
	"math"
	"time"

	"github.com/gridsol/insolation/internal/artifact"
	"github.com/gridsol/insolation/internal/grid"
	"github.com/gridsol/insolation/internal/snapshot"
)

const (
	// indexMax allows values above 1 to represent brightening beyond the
	// nominal clear reference.
	indexMax = 1.09
	// lowBranchCutoff separates the linear regime from the overcast floor.
	lowBranchCutoff = 0.2
)

// clearSkyIndexPixel computes K for one pixel from the ceiling X, the pixel
// brightness b and the albedo floor p. K is dimensionless: 1.0 fully clear,
// lower values more cloud attenuation.
//
// The low-d branch retains the source model's 0.333*(X-b)/(X-b) term, which
// is algebraically 1 wherever X != b; it is evaluated as the constant 1
// rather than as a pixel-wise division that could divide by zero.
func clearSkyIndexPixel(x, b, p float64) float64 {
	denom := x - p
	if denom == 0 {
		// Degenerate history: the floor equals the ceiling, so there is no
		// brightness range to scale against. Treat the pixel as clear.
		return 1.0
	}
	d := (x - b) / denom
	if d > lowBranchCutoff {
		if d > indexMax {
			return indexMax
		}
		return d
	}
	return math.Min(lowBranchCutoff, 1.667*d*d+0.333*1.0+0.0667)
}

// clearSkyIndex computes the per-pixel clear-sky index grid for a slot,
// combining the snapshot brightness with the ceiling scalar and albedo
// floor. Memoized under (day, slot, "K").
func (e *Engine) clearSkyIndex(day time.Time, slotKey string) (*grid.Grid, error) {
	dayKey := snapshot.DayKey(day)

	if !e.params.Force {
		if cached, ok, err := artifact.GetGrid(e.store, dayKey, slotKey, artifact.KindIndex); err != nil {
			return nil, err
		} else if ok {
			return cached, nil
		}
	}

	snap, err := e.snaps.Read(day, slotKey)
	if err != nil {
		return nil, err
	}

	x, err := e.ceiling(day, slotKey, snap)
	if err != nil {
		return nil, err
	}

	p, err := e.albedoFloor(day, slotKey)
	if err != nil {
		return nil, err
	}

	k, err := grid.Combine(snap, p, func(b, pv float64) float64 {
		return clearSkyIndexPixel(x, b, pv)
	})
	if err != nil {
		return nil, err
	}

	if err := artifact.PutGrid(e.store, dayKey, slotKey, artifact.KindIndex, k); err != nil {
		return nil, err
	}
	return k, nil
}
