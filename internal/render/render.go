// Package render draws camera planes as colour-indexed rasters. Every stage
// uses the identical palette so maps from different stages are directly
// comparable.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/banshee-data/rccm.repair/internal/fsutil"
	"github.com/banshee-data/rccm.repair/internal/rccm"
)

// Scale is the fixed pixel-duplication upscale factor.
const Scale = 4

// Palette order is stable; the palette index of a class never changes.
var palette = []struct {
	class rccm.ClassCode
	name  string
	col   color.RGBA
}{
	{rccm.ClassMissing, "missing", color.RGBA{R: 255, A: 255}},
	{rccm.ClassCloudHC, "cld-hi", color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	{rccm.ClassCloudLC, "cld-lo", color.RGBA{R: 128, G: 128, B: 128, A: 255}},
	{rccm.ClassClearLC, "clr-lo", color.RGBA{G: 255, B: 255, A: 255}},
	{rccm.ClassClearHC, "clr-hi", color.RGBA{B: 255, A: 255}},
	{rccm.ClassObscured, "obscured", color.RGBA{R: 255, G: 215, A: 255}},
	{rccm.ClassEdge, "edge", color.RGBA{A: 255}},
	{rccm.ClassFill, "fill", color.RGBA{R: 255, A: 255}},
}

// paletteIndex maps a class to its palette entry. Out-of-vocabulary values
// draw as missing.
func paletteIndex(v rccm.ClassCode) uint8 {
	for i, p := range palette {
		if p.class == v {
			return uint8(i)
		}
	}
	return 0
}

// EncodePlane renders one camera plane as a paletted PNG at the fixed
// upscale. Samples run along x, lines along y.
func EncodePlane(plane []rccm.ClassCode) ([]byte, error) {
	if len(plane) != rccm.PlaneCells {
		return nil, fmt.Errorf("render: plane has %d cells, want %d", len(plane), rccm.PlaneCells)
	}
	pal := make(color.Palette, len(palette))
	for i, p := range palette {
		pal[i] = p.col
	}
	img := image.NewPaletted(image.Rect(0, 0, rccm.BlockSamples*Scale, rccm.BlockLines*Scale), pal)
	for s := 0; s < rccm.BlockSamples; s++ {
		for l := 0; l < rccm.BlockLines; l++ {
			ci := paletteIndex(plane[s*rccm.BlockLines+l])
			for dx := 0; dx < Scale; dx++ {
				for dy := 0; dy < Scale; dy++ {
					img.SetColorIndex(s*Scale+dx, l*Scale+dy, ci)
				}
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Legend returns the text legend written next to every map.
func Legend() string {
	var buf bytes.Buffer
	for _, p := range palette {
		fmt.Fprintf(&buf, "%-8s #%02x%02x%02x\n", p.name, p.col.R, p.col.G, p.col.B)
	}
	return buf.String()
}

// Sink renders every camera of a stage tile into a directory. It implements
// rccm.MapSink. Filenames are fixed by the surrounding store layout, so the
// sink receives the resolved directory and a name prefix.
type Sink struct {
	FS     fsutil.FileSystem
	Dir    string
	Prefix string // e.g. "P168-O060000-B110"
}

// RenderTile writes one PNG per camera plus a sibling legend.
func (s *Sink) RenderTile(stage string, tile *rccm.Tile) error {
	if err := s.FS.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("render: mkdir %s: %w", s.Dir, err)
	}
	for _, cam := range rccm.Cameras() {
		data, err := EncodePlane(tile.Plane(cam))
		if err != nil {
			return err
		}
		name := fmt.Sprintf("%s/%s_%s_%s.png", s.Dir, s.Prefix, stage, cam)
		if err := s.FS.WriteFile(name, data, 0644); err != nil {
			return fmt.Errorf("render: write %s: %w", name, err)
		}
	}
	legend := fmt.Sprintf("%s/%s_legend.txt", s.Dir, s.Prefix)
	if err := s.FS.WriteFile(legend, []byte(Legend()), 0644); err != nil {
		return fmt.Errorf("render: write %s: %w", legend, err)
	}
	return nil
}
