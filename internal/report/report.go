// Package report formats pipeline diagnostics: per-stage category counts,
// per-camera percentages, and confusion matrices, appended as UTF-8 text to
// any writer. It also renders the sweep chart.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/rccm.repair/internal/rccm"
)

// Writer appends formatted sections to an underlying stream. It implements
// rccm.LogSink.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// StageReport appends the per-camera class tallies and percentages for a
// completed stage, followed by a missing-fraction summary across cameras.
func (r *Writer) StageReport(stage string, tile *rccm.Tile, counts rccm.Counts) error {
	if _, err := fmt.Fprintf(r.w, "== %s ==\n", stage); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(r.w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "camera\tmissing\tcld-hi\tcld-lo\tclr-lo\tclr-hi\tobscured\tedge\tfill\tanomaly\tmissing%")

	fractions := make([]float64, 0, rccm.NumCameras)
	for _, cam := range rccm.Cameras() {
		tally := tile.Tally(cam)
		frac := float64(tally.Missing) / float64(rccm.PlaneCells)
		fractions = append(fractions, frac)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f%%\n",
			cam, tally.Missing, tally.CloudHC, tally.CloudLC, tally.ClearLC, tally.ClearHC,
			tally.Obscured, tally.Edge, tally.Fill, tally.Anomaly, 100*frac)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	mean, std := stat.MeanStdDev(fractions, nil)
	_, err := fmt.Fprintf(r.w, "total missing %d, per-camera fraction mean %.4f stddev %.4f\n\n",
		counts.Total(), mean, std)
	return err
}

// ConfusionReport appends the harness matrices for a stage. Cameras with an
// empty matrix are skipped.
func (r *Writer) ConfusionReport(stage string, matrices [rccm.NumCameras]rccm.ConfusionMatrix) error {
	if _, err := fmt.Fprintf(r.w, "== %s confusion ==\n", stage); err != nil {
		return err
	}
	for _, cam := range rccm.Cameras() {
		m := matrices[cam]
		total := m.Total()
		if total == 0 {
			continue
		}
		fmt.Fprintf(r.w, "camera %s (%d reconstructed, %d exact)\n", cam, total, m.Diagonal())
		tw := tabwriter.NewWriter(r.w, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "orig\\recon\t0\t1\t2\t3\t4")
		for orig := 0; orig < 5; orig++ {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\n",
				orig, m[orig][0], m[orig][1], m[orig][2], m[orig][3], m[orig][4])
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(r.w)
	return err
}
