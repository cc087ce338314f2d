package grid

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Binary layout: magic, rows, cols, cellsize, nodata, then row-major float64
// data. Little-endian throughout, matching the ingestion tooling's output.
const magic = uint32(0x47524431) // "GRD1"

// maxCells bounds the allocation a decoded header can demand; a corrupt
// shape must fail instead of allocating gigabytes. 2^26 cells is 512 MB of
// float64 data, far beyond any sensor footprint in use.
const maxCells = 1 << 26

// WriteTo serializes the grid to w.
func (g *Grid) WriteTo(w io.Writer) error {
	hdr := struct {
		Magic    uint32
		Rows     int32
		Cols     int32
		CellSize float64
		NoData   float64
	}{magic, int32(g.Def.Rows), int32(g.Def.Cols), g.Def.CellSize, g.Def.NoData}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("grid: write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, g.Data); err != nil {
		return fmt.Errorf("grid: write data: %w", err)
	}
	return nil
}

// Read deserializes a grid from r.
func Read(r io.Reader) (*Grid, error) {
	var hdr struct {
		Magic    uint32
		Rows     int32
		Cols     int32
		CellSize float64
		NoData   float64
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("grid: read header: %w", err)
	}
	if hdr.Magic != magic {
		return nil, fmt.Errorf("grid: bad magic %#x", hdr.Magic)
	}
	if hdr.Rows <= 0 || hdr.Cols <= 0 {
		return nil, fmt.Errorf("grid: invalid shape %dx%d", hdr.Rows, hdr.Cols)
	}
	if cells := int64(hdr.Rows) * int64(hdr.Cols); cells > maxCells {
		return nil, fmt.Errorf("grid: shape %dx%d exceeds %d cells", hdr.Rows, hdr.Cols, maxCells)
	}
	g := &Grid{
		Def: Def{
			Rows:     int(hdr.Rows),
			Cols:     int(hdr.Cols),
			CellSize: hdr.CellSize,
			NoData:   hdr.NoData,
		},
		Data: make([]float64, int(hdr.Rows)*int(hdr.Cols)),
	}
	if err := binary.Read(r, binary.LittleEndian, &g.Data); err != nil {
		return nil, fmt.Errorf("grid: read data: %w", err)
	}
	return g, nil
}

// Marshal returns the binary encoding of the grid.
func (g *Grid) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := g.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a grid from its binary encoding.
func Unmarshal(b []byte) (*Grid, error) {
	return Read(bytes.NewReader(b))
}
