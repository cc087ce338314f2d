package insolation

import (
	"fmt"
	"strconv"
)

// SlotKey formats a minute-of-day as the HHMM key used for snapshot naming
// and artifact keys.
func SlotKey(minuteOfDay int) string {
	return fmt.Sprintf("%02d%02d", minuteOfDay/60, minuteOfDay%60)
}

// SlotMinute parses an HHMM key back to minute-of-day.
func SlotMinute(key string) (int, error) {
	if len(key) != 4 {
		return 0, fmt.Errorf("insolation: bad slot key %q", key)
	}
	h, err := strconv.Atoi(key[:2])
	if err != nil {
		return 0, fmt.Errorf("insolation: bad slot key %q", key)
	}
	m, err := strconv.Atoi(key[2:])
	if err != nil {
		return 0, fmt.Errorf("insolation: bad slot key %q", key)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("insolation: slot key %q out of range", key)
	}
	return h*60 + m, nil
}

// acquisitionOffset shifts the idealized slot sequence to match the source
// satellite's acquisition cadence (images arrive one minute past the
// interval boundary).
const acquisitionOffset = 1

// EnumerateSlots lists the idealized slot keys for a day: interval-minute
// spacing starting from the first interval boundary at or after sunrise,
// each shifted by the acquisition offset, continuing through the first slot
// strictly past sunset (inclusive). The sequence drives proactive image
// acquisition only; the integration loop iterates snapshots that actually
// exist.
func EnumerateSlots(sunriseMin, sunsetMin, interval int) []string {
	if interval <= 0 || sunsetMin <= sunriseMin {
		return nil
	}
	first := ((sunriseMin + interval - 1) / interval) * interval
	var keys []string
	for m := first + acquisitionOffset; m < 1440; m += interval {
		keys = append(keys, SlotKey(m))
		if m > sunsetMin {
			break
		}
	}
	return keys
}
