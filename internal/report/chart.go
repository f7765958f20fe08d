package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/rccm.repair/internal/rccm"
)

// SweepSeries carries the per-orbit missing counts of a completed sweep in
// chart-ready form: one series per camera plus the block total.
type SweepSeries struct {
	Orbits  []int64
	Missing [rccm.NumCameras][]int64
	Total   []int64
}

// WriteSweepChart renders an HTML line chart of per-camera missing counts
// across the swept orbits.
func WriteSweepChart(w io.Writer, title string, s SweepSeries) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Bottom: "0"}),
	)

	xs := make([]string, len(s.Orbits))
	for i, o := range s.Orbits {
		xs[i] = fmt.Sprintf("%d", o)
	}
	line.SetXAxis(xs)

	for _, cam := range rccm.Cameras() {
		data := make([]opts.LineData, len(s.Missing[cam]))
		for i, v := range s.Missing[cam] {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(cam.String(), data)
	}
	total := make([]opts.LineData, len(s.Total))
	for i, v := range s.Total {
		total[i] = opts.LineData{Value: v}
	}
	line.AddSeries("total", total)

	return line.Render(w)
}
