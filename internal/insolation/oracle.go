package insolation

import (
	"fmt"
	"time"

	"github.com/gridsol/insolation/pkg/solar"
)

// Oracle supplies the clear-sky radiation baseline. SunWindow is called once
// per day; CumulativeIrradiance once per processed slot. Failures here are
// unrecoverable preconditions for the whole run.
type Oracle interface {
	// SunWindow returns sunrise and sunset as local minutes from midnight.
	SunWindow(day time.Time) (sunriseMin, sunsetMin int, err error)
	// CumulativeIrradiance returns clear-sky cumulative irradiance in Wh/m²
	// from midnight up to the given local minute-of-day. Non-decreasing in
	// minuteOfDay for a fixed day.
	CumulativeIrradiance(day time.Time, minuteOfDay int) (float64, error)
}

// SiteOracle adapts the pkg/solar clear-sky model to the Oracle contract for
// a fixed site geometry.
type SiteOracle struct {
	Site solar.Site
}

func (o SiteOracle) SunWindow(day time.Time) (int, int, error) {
	sunrise, sunset, err := o.Site.SunWindow(day.Year(), day.Month(), day.Day())
	if err != nil {
		return 0, 0, fmt.Errorf("sun window for %s: %w", day.Format("2006-01-02"), err)
	}
	return sunrise, sunset, nil
}

func (o SiteOracle) CumulativeIrradiance(day time.Time, minuteOfDay int) (float64, error) {
	if minuteOfDay < 0 || minuteOfDay >= 1440 {
		return 0, fmt.Errorf("minute of day %d out of range", minuteOfDay)
	}
	return o.Site.CumulativeIrradiance(day.Year(), day.Month(), day.Day(), minuteOfDay), nil
}
