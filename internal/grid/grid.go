// Package grid provides the dense raster substrate used by the insolation
// pipeline: a float64 grid with a NoData sentinel, per-pixel map/combine
// operations, multi-grid reductions, and mask-aware spatial smoothing.
package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultNoData marks invalid pixels. Matches the sentinel used by the
// snapshot ingestion tooling.
const DefaultNoData = -9999.0

// Def describes the shape of a grid. All grids in one working domain share
// the same Def; operations across grids require identical Defs.
type Def struct {
	Rows     int
	Cols     int
	CellSize float64
	NoData   float64
}

// NCells returns the total number of cells in the grid.
func (d Def) NCells() int { return d.Rows * d.Cols }

// Equal reports whether two defs describe the same grid shape.
func (d Def) Equal(o Def) bool {
	return d.Rows == o.Rows && d.Cols == o.Cols && d.CellSize == o.CellSize && d.NoData == o.NoData
}

// Grid is a dense row-major raster. Cells holding the NoData sentinel are
// invalid and excluded from reductions and smoothing.
type Grid struct {
	Def  Def
	Data []float64
}

// New creates a grid with every cell set to NoData.
func New(def Def) *Grid {
	g := &Grid{
		Def:  def,
		Data: make([]float64, def.NCells()),
	}
	for i := range g.Data {
		g.Data[i] = def.NoData
	}
	return g
}

// Uniform creates a grid with every cell set to v.
func Uniform(def Def, v float64) *Grid {
	g := &Grid{
		Def:  def,
		Data: make([]float64, def.NCells()),
	}
	for i := range g.Data {
		g.Data[i] = v
	}
	return g
}

// At returns the value at (row, col).
func (g *Grid) At(row, col int) float64 {
	return g.Data[row*g.Def.Cols+col]
}

// Set assigns the value at (row, col).
func (g *Grid) Set(row, col int, v float64) {
	g.Data[row*g.Def.Cols+col] = v
}

// IsValid reports whether the cell at linear index i holds a real value.
func (g *Grid) IsValid(i int) bool {
	return g.Data[i] != g.Def.NoData && !math.IsNaN(g.Data[i])
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		Def:  g.Def,
		Data: make([]float64, len(g.Data)),
	}
	copy(out.Data, g.Data)
	return out
}

// Map applies fn to every valid cell and returns a new grid. Invalid cells
// stay NoData.
func (g *Grid) Map(fn func(v float64) float64) *Grid {
	out := New(g.Def)
	for i, v := range g.Data {
		if g.IsValid(i) {
			out.Data[i] = fn(v)
		}
	}
	return out
}

// Combine applies fn pairwise to a and b. A cell is valid in the result only
// where both inputs are valid.
func Combine(a, b *Grid, fn func(x, y float64) float64) (*Grid, error) {
	if !a.Def.Equal(b.Def) {
		return nil, fmt.Errorf("grid: shape mismatch %dx%d vs %dx%d",
			a.Def.Rows, a.Def.Cols, b.Def.Rows, b.Def.Cols)
	}
	out := New(a.Def)
	for i := range a.Data {
		if a.IsValid(i) && b.IsValid(i) {
			out.Data[i] = fn(a.Data[i], b.Data[i])
		}
	}
	return out, nil
}

// ReduceMin returns the per-cell minimum across the given grids. A cell is
// valid in the result if it is valid in at least one input; invalid inputs
// are simply absent from the minimum, not treated as zero.
func ReduceMin(grids []*Grid) (*Grid, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("grid: ReduceMin requires at least one grid")
	}
	def := grids[0].Def
	for _, g := range grids[1:] {
		if !g.Def.Equal(def) {
			return nil, fmt.Errorf("grid: ReduceMin shape mismatch")
		}
	}
	out := New(def)
	for i := 0; i < def.NCells(); i++ {
		have := false
		min := 0.0
		for _, g := range grids {
			if !g.IsValid(i) {
				continue
			}
			if !have || g.Data[i] < min {
				min = g.Data[i]
				have = true
			}
		}
		if have {
			out.Data[i] = min
		}
	}
	return out, nil
}

// MaxValid returns the maximum over all valid cells. The second return is
// false when the grid holds no valid cell.
func (g *Grid) MaxValid() (float64, bool) {
	vals := g.validValues()
	if len(vals) == 0 {
		return 0, false
	}
	return floats.Max(vals), true
}

// Summary holds domain-wide statistics over the valid cells of a grid.
type Summary struct {
	N      int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Summarize computes statistics over the valid cells. Used for logging and
// for collapsing per-pixel daily totals into publishable scalars.
func (g *Grid) Summarize() Summary {
	vals := g.validValues()
	if len(vals) == 0 {
		return Summary{}
	}
	return Summary{
		N:      len(vals),
		Min:    floats.Min(vals),
		Max:    floats.Max(vals),
		Mean:   stat.Mean(vals, nil),
		StdDev: stat.StdDev(vals, nil),
	}
}

func (g *Grid) validValues() []float64 {
	vals := make([]float64, 0, len(g.Data))
	for i, v := range g.Data {
		if g.IsValid(i) {
			vals = append(vals, v)
		}
	}
	return vals
}

// SmoothMean applies a square moving-average filter of the given radius
// (radius 2 = 5x5 window). The mean at each cell is taken over the valid
// cells inside the window; cells invalid in the input stay NoData.
func (g *Grid) SmoothMean(radius int) *Grid {
	out := New(g.Def)
	for r := 0; r < g.Def.Rows; r++ {
		for c := 0; c < g.Def.Cols; c++ {
			i := r*g.Def.Cols + c
			if !g.IsValid(i) {
				continue
			}
			sum := 0.0
			n := 0
			for dr := -radius; dr <= radius; dr++ {
				rr := r + dr
				if rr < 0 || rr >= g.Def.Rows {
					continue
				}
				for dc := -radius; dc <= radius; dc++ {
					cc := c + dc
					if cc < 0 || cc >= g.Def.Cols {
						continue
					}
					j := rr*g.Def.Cols + cc
					if g.IsValid(j) {
						sum += g.Data[j]
						n++
					}
				}
			}
			if n > 0 {
				out.Data[i] = sum / float64(n)
			}
		}
	}
	return out
}
