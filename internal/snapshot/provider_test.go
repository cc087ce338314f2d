package snapshot

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/gridsol/insolation/internal/grid"
)

var testDay = time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

func writeSnapshot(t *testing.T, dir, name string, v float64) {
	t.Helper()
	g := grid.Uniform(grid.Def{Rows: 2, Cols: 2, CellSize: 1000, NoData: grid.DefaultNoData}, v)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := g.WriteTo(f); err != nil {
		t.Fatal(err)
	}
}

func TestDirProviderList(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "B20260615_0701.grid", 1)
	writeSnapshot(t, dir, "B20260615_1241.grid", 2)
	writeSnapshot(t, dir, "B20260615_0901.grid", 3)
	writeSnapshot(t, dir, "B20260614_0701.grid", 4) // other day
	writeSnapshot(t, dir, "B20260615_bad.grid", 5)  // malformed slot
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := NewDirProvider(dir, "")
	if err != nil {
		t.Fatal(err)
	}

	slots, err := p.List(testDay)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"0701", "0901", "1241"}
	if !reflect.DeepEqual(slots, want) {
		t.Errorf("expected %v, got %v", want, slots)
	}
}

func TestDirProviderRead(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "B20260615_0701.grid", 42)

	p, err := NewDirProvider(dir, "")
	if err != nil {
		t.Fatal(err)
	}

	g, err := p.Read(testDay, "0701")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if g.At(0, 0) != 42 {
		t.Errorf("expected 42, got %g", g.At(0, 0))
	}

	if _, err := p.Read(testDay, "0801"); err == nil {
		t.Error("Read of a missing snapshot should fail")
	}
}

func TestDirProviderPatternOverride(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "test-20260615-0701.bin", 7)
	writeSnapshot(t, dir, "B20260615_0901.grid", 8) // default naming, should be invisible

	p, err := NewDirProvider(dir, "test-%s-%s.bin")
	if err != nil {
		t.Fatal(err)
	}

	slots, err := p.List(testDay)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !reflect.DeepEqual(slots, []string{"0701"}) {
		t.Errorf("expected [0701], got %v", slots)
	}
}

func TestDirProviderBadPattern(t *testing.T) {
	for _, pattern := range []string{"%s.grid", "a_%s_%s_%s.grid"} {
		if _, err := NewDirProvider(t.TempDir(), pattern); err == nil {
			t.Errorf("pattern %q should be rejected", pattern)
		}
	}
}

func TestDirProviderMissingDir(t *testing.T) {
	p, err := NewDirProvider(filepath.Join(t.TempDir(), "absent"), "")
	if err != nil {
		t.Fatal(err)
	}
	slots, err := p.List(testDay)
	if err != nil {
		t.Fatalf("List on a missing directory should not fail: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots, got %v", slots)
	}
}
