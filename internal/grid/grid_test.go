package grid

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func testDef(rows, cols int) Def {
	return Def{Rows: rows, Cols: cols, CellSize: 1000, NoData: DefaultNoData}
}

func TestSmoothMean(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *Grid
		radius   int
		check    func(t *testing.T, out *Grid)
	}{
		{
			name: "uniform grid stays uniform",
			build: func() *Grid {
				return Uniform(testDef(6, 6), 42.0)
			},
			radius: 2,
			check: func(t *testing.T, out *Grid) {
				for i, v := range out.Data {
					if math.Abs(v-42.0) > 1e-9 {
						t.Errorf("cell %d: expected 42, got %g", i, v)
					}
				}
			},
		},
		{
			name: "single outlier is diluted",
			build: func() *Grid {
				g := Uniform(testDef(7, 7), 10.0)
				g.Set(3, 3, 260.0) // sun-glint style spike
				return g
			},
			radius: 2,
			check: func(t *testing.T, out *Grid) {
				// Centre cell averages 24 neighbours at 10 plus the spike
				want := (24*10.0 + 260.0) / 25.0
				if math.Abs(out.At(3, 3)-want) > 1e-9 {
					t.Errorf("centre: expected %g, got %g", want, out.At(3, 3))
				}
				max, _ := out.MaxValid()
				if max >= 260.0 {
					t.Errorf("smoothed max %g should be well below the raw spike", max)
				}
			},
		},
		{
			name: "nodata cells stay nodata and are excluded",
			build: func() *Grid {
				g := Uniform(testDef(5, 5), 10.0)
				g.Set(2, 2, DefaultNoData)
				return g
			},
			radius: 1,
			check: func(t *testing.T, out *Grid) {
				if out.IsValid(2*5 + 2) {
					t.Error("nodata cell should stay invalid after smoothing")
				}
				// A neighbour's window contains the invalid cell but its mean
				// is still exactly 10 because the invalid cell is excluded.
				if math.Abs(out.At(1, 2)-10.0) > 1e-9 {
					t.Errorf("neighbour: expected 10, got %g", out.At(1, 2))
				}
			},
		},
		{
			name: "corner cell uses truncated window",
			build: func() *Grid {
				g := New(testDef(4, 4))
				for r := 0; r < 4; r++ {
					for c := 0; c < 4; c++ {
						g.Set(r, c, float64(r*4+c))
					}
				}
				return g
			},
			radius: 1,
			check: func(t *testing.T, out *Grid) {
				want := (0.0 + 1 + 4 + 5) / 4.0
				if math.Abs(out.At(0, 0)-want) > 1e-9 {
					t.Errorf("corner: expected %g, got %g", want, out.At(0, 0))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.build().SmoothMean(tt.radius))
		})
	}
}

func TestReduceMin(t *testing.T) {
	def := testDef(2, 2)

	a := Uniform(def, 5.0)
	b := Uniform(def, 3.0)
	b.Set(0, 1, DefaultNoData) // absent from the minimum, not zero
	c := Uniform(def, 7.0)
	c.Set(1, 0, 1.0)

	out, err := ReduceMin([]*Grid{a, b, c})
	if err != nil {
		t.Fatalf("ReduceMin: %v", err)
	}

	want := []float64{3.0, 5.0, 1.0, 3.0}
	for i, w := range want {
		if math.Abs(out.Data[i]-w) > 1e-9 {
			t.Errorf("cell %d: expected %g, got %g", i, w, out.Data[i])
		}
	}

	if _, err := ReduceMin(nil); err == nil {
		t.Error("ReduceMin of no grids should fail")
	}
}

func TestReduceMinAllInvalidCell(t *testing.T) {
	def := testDef(1, 2)
	a := New(def)
	a.Set(0, 0, 2.0)
	b := New(def)
	b.Set(0, 0, 4.0)

	out, err := ReduceMin([]*Grid{a, b})
	if err != nil {
		t.Fatalf("ReduceMin: %v", err)
	}
	if !out.IsValid(0) || out.Data[0] != 2.0 {
		t.Errorf("cell 0: expected 2, got %g", out.Data[0])
	}
	if out.IsValid(1) {
		t.Error("cell 1 should be invalid when no input has a value")
	}
}

func TestSummarize(t *testing.T) {
	g := New(testDef(2, 2))
	g.Set(0, 0, 1.0)
	g.Set(0, 1, 3.0)
	g.Set(1, 0, DefaultNoData)
	g.Set(1, 1, 5.0)

	s := g.Summarize()
	if s.N != 3 {
		t.Errorf("expected 3 valid cells, got %d", s.N)
	}
	if s.Min != 1.0 || s.Max != 5.0 {
		t.Errorf("expected min=1 max=5, got min=%g max=%g", s.Min, s.Max)
	}
	if math.Abs(s.Mean-3.0) > 1e-9 {
		t.Errorf("expected mean=3, got %g", s.Mean)
	}

	empty := New(testDef(2, 2))
	if es := empty.Summarize(); es.N != 0 {
		t.Errorf("empty grid should summarize to zero values, got %+v", es)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	g := New(testDef(3, 4))
	g.Set(0, 0, 1.5)
	g.Set(2, 3, -2.25)

	b, err := g.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Def.Equal(g.Def) {
		t.Fatalf("def mismatch: %+v vs %+v", got.Def, g.Def)
	}
	for i := range g.Data {
		if got.Data[i] != g.Data[i] {
			t.Fatalf("cell %d: expected %g, got %g", i, g.Data[i], got.Data[i])
		}
	}

	if _, err := Unmarshal([]byte("not a grid payload")); err == nil {
		t.Error("Unmarshal of garbage should fail")
	}
}

func TestCodecRejectsOversizedHeader(t *testing.T) {
	// A valid-magic header whose shape would demand a huge allocation (or
	// overflow rows*cols) must be rejected before the data read.
	encodeHeader := func(rows, cols int32) []byte {
		var buf bytes.Buffer
		hdr := struct {
			Magic    uint32
			Rows     int32
			Cols     int32
			CellSize float64
			NoData   float64
		}{magic, rows, cols, 1000, DefaultNoData}
		if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
			t.Fatalf("encoding header: %v", err)
		}
		return buf.Bytes()
	}

	for _, tc := range []struct {
		name       string
		rows, cols int32
	}{
		{"huge shape", 1 << 20, 1 << 20},
		{"overflowing product", 1 << 30, 1 << 30},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Unmarshal(encodeHeader(tc.rows, tc.cols)); err == nil {
				t.Errorf("shape %dx%d should be rejected", tc.rows, tc.cols)
			}
		})
	}

	// A sane shape with truncated data still fails on the data read.
	if _, err := Unmarshal(encodeHeader(2, 2)); err == nil {
		t.Error("truncated payload should fail")
	}
}
