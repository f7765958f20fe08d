package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/banshee-data/rccm.repair/internal/rccm"
)

func TestStageReport(t *testing.T) {
	tile := rccm.NewTile()
	for _, cam := range rccm.Cameras() {
		plane := tile.Plane(cam)
		for i := range plane {
			plane[i] = rccm.ClassClearHC
		}
	}
	tile.Set(rccm.CameraDF, 0, 0, rccm.ClassMissing)
	counts := tile.MissingCounts()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.StageReport("rccm1", tile, counts); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"== rccm1 ==", "DF", "DA", "total missing 1", "clr-hi"} {
		if !strings.Contains(out, want) {
			t.Errorf("report lacks %q:\n%s", want, out)
		}
	}
}

func TestConfusionReport(t *testing.T) {
	var ms [rccm.NumCameras]rccm.ConfusionMatrix
	ms[rccm.CameraAF].Add(rccm.ClassCloudHC, rccm.ClassCloudHC)
	ms[rccm.CameraAF].Add(rccm.ClassClearLC, rccm.ClassClearHC)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.ConfusionReport("rccm2", ms); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "== rccm2 confusion ==") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "camera AF (2 reconstructed, 1 exact)") {
		t.Fatalf("missing AF summary:\n%s", out)
	}
	// Cameras without data are skipped entirely.
	if strings.Contains(out, "camera DF") {
		t.Fatalf("empty camera reported:\n%s", out)
	}
}

func TestWriteSweepChart(t *testing.T) {
	var s SweepSeries
	s.Orbits = []int64{60000, 60233}
	for _, cam := range rccm.Cameras() {
		s.Missing[cam] = []int64{10, 20}
	}
	s.Total = []int64{90, 180}

	var buf bytes.Buffer
	if err := WriteSweepChart(&buf, "missing pixels, path 168 block 110", s); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"missing pixels, path 168 block 110", "60233", "DA", "total"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart lacks %q", want)
		}
	}
}
