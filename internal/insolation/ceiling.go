package insolation

import (
	"fmt"
	"time"

	"github.com/gridsol/insolation/internal/artifact"
	"github.com/gridsol/insolation/internal/grid"
	"github.com/gridsol/insolation/internal/snapshot"
)

// smoothRadius gives the 5x5 averaging window applied before taking the
// ceiling maximum. The smoothing rejects single-pixel sun-glint artifacts a
// raw maximum would capture.
const smoothRadius = 2

// ceiling estimates the brightest plausible cloud-top reflectance for a
// snapshot: a 5x5 mean smoothing pass followed by the smoothed grid's global
// maximum, as a single scalar for the whole slot. The smoothing pass is the
// most expensive step in the pipeline, so the scalar is memoized under
// (day, slot, "ceilingScalar").
func (e *Engine) ceiling(day time.Time, slotKey string, snap *grid.Grid) (float64, error) {
	dayKey := snapshot.DayKey(day)

	if !e.params.Force {
		if cached, ok, err := artifact.GetScalar(e.store, dayKey, slotKey, artifact.KindCeiling); err != nil {
			return 0, err
		} else if ok {
			return cached, nil
		}
	}

	smoothed := snap.SmoothMean(smoothRadius)
	x, ok := smoothed.MaxValid()
	if !ok {
		return 0, fmt.Errorf("ceiling %s/%s: snapshot has no valid pixels", dayKey, slotKey)
	}

	if err := artifact.PutScalar(e.store, dayKey, slotKey, artifact.KindCeiling, x); err != nil {
		return 0, err
	}
	return x, nil
}
