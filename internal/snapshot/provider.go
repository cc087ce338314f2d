// Package snapshot reads ingested satellite brightness grids from the
// working directory. Snapshots are produced by the external ingestion step
// and are read-only inputs here.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gridsol/insolation/internal/grid"
)

// DefaultPattern names snapshot files as B<yyyymmdd>_<HHMM>.grid, matching
// the ingestion tooling's output. The two %s verbs receive the day key and
// slot key respectively.
const DefaultPattern = "B%s_%s.grid"

// DayKey formats a calendar day as yyyymmdd, the key used throughout the
// artifact cache and snapshot naming.
func DayKey(t time.Time) string {
	return t.Format("20060102")
}

// Provider lists and reads brightness snapshots for a day.
type Provider interface {
	// List returns the slot keys (HHMM) of snapshots present for the day,
	// sorted chronologically.
	List(day time.Time) ([]string, error)
	// Read loads the brightness grid for one (day, slot).
	Read(day time.Time, slotKey string) (*grid.Grid, error)
}

// DirProvider reads snapshots from a flat directory.
type DirProvider struct {
	dir     string
	pattern string
	slotRe  *regexp.Regexp
	prefix  func(dayKey string) string
	suffix  string
}

// NewDirProvider creates a provider over dir. pattern must contain exactly
// two %s verbs (day key, slot key); pass "" for the default.
func NewDirProvider(dir, pattern string) (*DirProvider, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	parts := strings.Split(pattern, "%s")
	if len(parts) != 3 {
		return nil, fmt.Errorf("snapshot: pattern %q must contain exactly two %%s verbs", pattern)
	}
	p := &DirProvider{
		dir:     dir,
		pattern: pattern,
		suffix:  parts[2],
		prefix:  func(dayKey string) string { return parts[0] + dayKey + parts[1] },
	}
	p.slotRe = regexp.MustCompile(`^(\d{4})$`)
	return p, nil
}

// Path returns the file path for one (day, slot) snapshot.
func (p *DirProvider) Path(day time.Time, slotKey string) string {
	return filepath.Join(p.dir, fmt.Sprintf(p.pattern, DayKey(day), slotKey))
}

func (p *DirProvider) List(day time.Time) ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: list %s: %w", p.dir, err)
	}

	pre := p.prefix(DayKey(day))
	var slots []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, pre) || !strings.HasSuffix(name, p.suffix) {
			continue
		}
		slot := strings.TrimSuffix(strings.TrimPrefix(name, pre), p.suffix)
		if !p.slotRe.MatchString(slot) {
			continue
		}
		slots = append(slots, slot)
	}
	sort.Strings(slots) // HHMM keys sort chronologically as strings
	return slots, nil
}

func (p *DirProvider) Read(day time.Time, slotKey string) (*grid.Grid, error) {
	f, err := os.Open(p.Path(day, slotKey))
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s/%s: %w", DayKey(day), slotKey, err)
	}
	defer f.Close()
	g, err := grid.Read(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot: decode %s/%s: %w", DayKey(day), slotKey, err)
	}
	return g, nil
}
