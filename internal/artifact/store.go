// Package artifact provides the memoization cache for derived pipeline
// artifacts, keyed by (day, slot, kind). Writers never overwrite an existing
// artifact unless forced; presence of a key is the only synchronization
// signal between runs.
package artifact

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/gridsol/insolation/internal/grid"
)

// Kind identifies one class of derived artifact.
type Kind string

const (
	KindAlbedoFloor Kind = "P"             // per-pixel trailing-minimum brightness
	KindCeiling     Kind = "ceilingScalar" // smoothed-maximum brightness scalar
	KindIndex       Kind = "K"             // per-pixel clear-sky index
	KindCumulative  Kind = "G"             // per-pixel running corrected insolation
	KindDailyTotal  Kind = "dailyTotal"    // finalized day summary
)

// IntermediateKinds lists the artifact kinds that may be purged once a day's
// total has been finalized.
var IntermediateKinds = []Kind{KindAlbedoFloor, KindCeiling, KindIndex, KindCumulative}

// Store is the artifact cache contract. Payloads are opaque bytes; the typed
// helpers below handle grid, scalar and JSON encodings. Put is atomic per
// key: a reader sees either the full payload or nothing.
type Store interface {
	Get(day, slot string, kind Kind) ([]byte, bool, error)
	Put(day, slot string, kind Kind, payload []byte) error
	Exists(day, slot string, kind Kind) (bool, error)
	Delete(day, slot string, kind Kind) error
	// DeleteDay removes every artifact of the given kinds for the day.
	DeleteDay(day string, kinds []Kind) error
	// ListDays returns the day keys holding at least one artifact of the
	// kind, in ascending chronological order.
	ListDays(kind Kind) ([]string, error)
	Close() error
}

// PutGrid stores a grid payload.
func PutGrid(s Store, day, slot string, kind Kind, g *grid.Grid) error {
	b, err := g.Marshal()
	if err != nil {
		return err
	}
	return s.Put(day, slot, kind, b)
}

// GetGrid fetches a grid payload. The bool is false when the key is absent.
func GetGrid(s Store, day, slot string, kind Kind) (*grid.Grid, bool, error) {
	b, ok, err := s.Get(day, slot, kind)
	if err != nil || !ok {
		return nil, ok, err
	}
	g, err := grid.Unmarshal(b)
	if err != nil {
		return nil, false, fmt.Errorf("artifact %s/%s/%s: %w", day, slot, kind, err)
	}
	return g, true, nil
}

// PutScalar stores a float64 payload.
func PutScalar(s Store, day, slot string, kind Kind, v float64) error {
	return s.Put(day, slot, kind, []byte(strconv.FormatFloat(v, 'g', -1, 64)))
}

// GetScalar fetches a float64 payload.
func GetScalar(s Store, day, slot string, kind Kind) (float64, bool, error) {
	b, ok, err := s.Get(day, slot, kind)
	if err != nil || !ok {
		return 0, ok, err
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, false, fmt.Errorf("artifact %s/%s/%s: %w", day, slot, kind, err)
	}
	if math.IsNaN(v) {
		return 0, false, fmt.Errorf("artifact %s/%s/%s: NaN payload", day, slot, kind)
	}
	return v, true, nil
}

// PutJSON stores a JSON-encoded payload.
func PutJSON(s Store, day, slot string, kind Kind, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(day, slot, kind, b)
}

// GetJSON fetches a JSON-encoded payload into out.
func GetJSON(s Store, day, slot string, kind Kind, out interface{}) (bool, error) {
	b, ok, err := s.Get(day, slot, kind)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("artifact %s/%s/%s: %w", day, slot, kind, err)
	}
	return true, nil
}
