package insolation

import (
	"time"

	"github.com/gridsol/insolation/internal/artifact"
	"github.com/gridsol/insolation/internal/grid"
	"github.com/gridsol/insolation/internal/snapshot"
)

// slotState carries the values of one processed daytime slot forward to the
// next: the integration is a strict linear dependency chain, so slots are
// processed in chronological order only.
type slotState struct {
	key    string
	minute int
	gi     float64
	k      *grid.Grid
	g      *grid.Grid
}

// integrate computes the running cloud-corrected insolation G for a slot.
// First slot of the day: G = Gi * K. Subsequent slots accumulate by the
// trapezoidal rule, using the mean clear-sky index between the two slots
// times the clear-sky increment between them:
//
//	G = Gprev + ((Kprev + K) / 2) * (Gi - GiPrev)
//
// Gi is non-decreasing by construction of the oracle, so G never decreases.
// Memoized under (day, slot, "G").
func (e *Engine) integrate(day time.Time, cur *slotState, prev *slotState) (*grid.Grid, error) {
	dayKey := snapshot.DayKey(day)

	if !e.params.Force {
		if cached, ok, err := artifact.GetGrid(e.store, dayKey, cur.key, artifact.KindCumulative); err != nil {
			return nil, err
		} else if ok {
			return cached, nil
		}
	}

	var g *grid.Grid
	var err error
	if prev == nil {
		gi := cur.gi
		g = cur.k.Map(func(k float64) float64 { return gi * k })
	} else {
		dGi := cur.gi - prev.gi
		meanK, cerr := grid.Combine(prev.k, cur.k, func(kp, kc float64) float64 {
			return (kp + kc) / 2.0
		})
		if cerr != nil {
			return nil, cerr
		}
		g, err = grid.Combine(prev.g, meanK, func(gp, mk float64) float64 {
			return gp + mk*dGi
		})
		if err != nil {
			return nil, err
		}
	}

	if err := artifact.PutGrid(e.store, dayKey, cur.key, artifact.KindCumulative, g); err != nil {
		return nil, err
	}
	return g, nil
}
