package insolation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gridsol/insolation/internal/artifact"
	"github.com/gridsol/insolation/internal/grid"
	"github.com/gridsol/insolation/internal/snapshot"
)

// whPerM2ToMJ converts cumulative Wh/m² to MJ/m² (3600 J per Wh / 1e6).
const whPerM2ToMJ = 0.0036

// Finalizer states. Each day's slot loop moves monotonically through these.
type runState int

const (
	stateBeforeSunrise runState = iota
	stateDaytime
	stateFinalized
)

// Daily total artifact keys under kind "dailyTotal": the JSON summary lives
// under the empty slot; the per-pixel corrected total and index ratio grids
// under named slots.
const (
	totalSummarySlot = ""
	totalRsSlot      = "Rs"
	totalKdaySlot    = "Kday"
)

// DailyTotal is the finalized output for one day. Rso and Rs are in
// MJ/m²/day; Kday is unitless. Rs and Kday are per-pixel grids persisted
// alongside this summary, which carries their domain statistics.
type DailyTotal struct {
	Day        string    `json:"day"`
	Rso        float64   `json:"rso"`
	RsMean     float64   `json:"rs_mean"`
	RsMin      float64   `json:"rs_min"`
	RsMax      float64   `json:"rs_max"`
	KdayMean   float64   `json:"kday_mean"`
	FinalSlot  string    `json:"final_slot"`
	RunID      string    `json:"run_id"`
	ComputedAt time.Time `json:"computed_at"`
}

// DailyTotalFor returns the persisted total for a day, if the day has been
// finalized.
func DailyTotalFor(store artifact.Store, dayKey string) (*DailyTotal, bool, error) {
	var total DailyTotal
	ok, err := artifact.GetJSON(store, dayKey, totalSummarySlot, artifact.KindDailyTotal, &total)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &total, true, nil
}

// Run drives the integration state machine for one day over the snapshots
// that actually exist, in chronological order:
//
//	slot ≤ sunrise          ignored
//	sunrise < slot < sunset integrated into the running total
//	slot ≥ sunset           finalizes the day; later snapshots are ignored
//
// A day with no post-sunset snapshot yet stays unfinalized; a later rerun
// picks up from the cached artifacts and completes it. Returns the daily
// total and whether the day is finalized.
func (e *Engine) Run(ctx context.Context, day time.Time) (*DailyTotal, bool, error) {
	dayKey := snapshot.DayKey(day)

	if !e.params.Force {
		if total, ok, err := DailyTotalFor(e.store, dayKey); err != nil {
			return nil, false, err
		} else if ok {
			e.logger.Debugf("day %s already finalized at slot %s", dayKey, total.FinalSlot)
			return total, true, nil
		}
	}

	sunrise, sunset, err := e.sunWindow(day)
	if err != nil {
		return nil, false, err
	}

	slots, err := e.snaps.List(day)
	if err != nil {
		return nil, false, err
	}
	if len(slots) == 0 {
		e.logger.Infof("day %s: no snapshots available", dayKey)
		return nil, false, nil
	}

	state := stateBeforeSunrise
	var prev *slotState
	var total *DailyTotal

	for _, slotKey := range slots {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		minute, err := SlotMinute(slotKey)
		if err != nil {
			return nil, false, err
		}

		if minute <= sunrise {
			continue
		}

		if minute < sunset {
			state = stateDaytime
			cur, err := e.processDaytimeSlot(day, slotKey, minute, prev)
			if err != nil {
				return nil, false, err
			}
			prev = cur
			continue
		}

		// First slot at or past sunset closes out the day; anything later
		// is ignored.
		if prev == nil {
			e.logger.Warnf("day %s: post-sunset snapshot %s with no daytime slots, cannot finalize", dayKey, slotKey)
			return nil, false, nil
		}
		total, err = e.finalize(day, slotKey, minute, prev)
		if err != nil {
			return nil, false, err
		}
		state = stateFinalized
		break
	}

	switch state {
	case stateFinalized:
		e.logger.Infof("day %s finalized at slot %s: Rso=%.3f RsMean=%.3f KdayMean=%.3f",
			dayKey, total.FinalSlot, total.Rso, total.RsMean, total.KdayMean)
		return total, true, nil
	case stateDaytime:
		e.logger.Infof("day %s: daytime slots integrated, awaiting post-sunset snapshot", dayKey)
		return nil, false, nil
	default:
		return nil, false, nil
	}
}

// processDaytimeSlot computes (or reuses) K and G for one daytime slot and
// returns its state for the next iteration.
func (e *Engine) processDaytimeSlot(day time.Time, slotKey string, minute int, prev *slotState) (*slotState, error) {
	gi, err := e.oracle.CumulativeIrradiance(day, minute)
	if err != nil {
		return nil, fmt.Errorf("slot %s: %w", slotKey, err)
	}
	if prev != nil && gi < prev.gi {
		return nil, fmt.Errorf("slot %s: clear-sky cumulative decreased (%.3f < %.3f)", slotKey, gi, prev.gi)
	}

	k, err := e.clearSkyIndex(day, slotKey)
	if err != nil {
		return nil, err
	}

	cur := &slotState{key: slotKey, minute: minute, gi: gi, k: k}
	g, err := e.integrate(day, cur, prev)
	if err != nil {
		return nil, err
	}
	cur.g = g
	e.logger.Debugf("slot %s: Gi=%.3f", slotKey, gi)
	return cur, nil
}

// finalize computes the day's totals from the last daytime slot and the
// first post-sunset observation, persists them, and applies the retain
// policy. The single post-sunset sample closes out the integral: cloud
// conditions at that moment stand in for the remainder of the evening.
func (e *Engine) finalize(day time.Time, slotKey string, minute int, last *slotState) (*DailyTotal, error) {
	dayKey := snapshot.DayKey(day)

	giCur, err := e.oracle.CumulativeIrradiance(day, minute)
	if err != nil {
		return nil, fmt.Errorf("finalize %s: %w", slotKey, err)
	}
	if giCur < last.gi {
		return nil, fmt.Errorf("finalize %s: clear-sky cumulative decreased (%.3f < %.3f)", slotKey, giCur, last.gi)
	}

	rso := giCur * whPerM2ToMJ
	dGi := giCur - last.gi

	rs, err := grid.Combine(last.g, last.k, func(g, k float64) float64 {
		return (g + k*dGi) * whPerM2ToMJ
	})
	if err != nil {
		return nil, err
	}

	var kday *grid.Grid
	if rso > 0 {
		kday = rs.Map(func(v float64) float64 { return v / rso })
	} else {
		kday = grid.New(rs.Def)
	}

	rsStats := rs.Summarize()
	kdayStats := kday.Summarize()

	total := &DailyTotal{
		Day:        dayKey,
		Rso:        rso,
		RsMean:     rsStats.Mean,
		RsMin:      rsStats.Min,
		RsMax:      rsStats.Max,
		KdayMean:   kdayStats.Mean,
		FinalSlot:  slotKey,
		RunID:      uuid.NewString(),
		ComputedAt: time.Now().UTC(),
	}

	if err := artifact.PutGrid(e.store, dayKey, totalRsSlot, artifact.KindDailyTotal, rs); err != nil {
		return nil, err
	}
	if err := artifact.PutGrid(e.store, dayKey, totalKdaySlot, artifact.KindDailyTotal, kday); err != nil {
		return nil, err
	}
	if err := artifact.PutJSON(e.store, dayKey, totalSummarySlot, artifact.KindDailyTotal, total); err != nil {
		return nil, err
	}

	if !e.params.Retain {
		if err := e.store.DeleteDay(dayKey, artifact.IntermediateKinds); err != nil {
			// The total is already durable; a failed purge costs disk, not
			// correctness.
			e.logger.Warnf("day %s: purge of intermediate artifacts failed: %v", dayKey, err)
		}
	}

	return total, nil
}
