// Package sweep iterates every orbit of a path that has input files in both
// roots and tabulates per-camera missing counts after Stage 1; orbits whose
// inputs are incomplete or unreadable become flagged rows. The sweep never repairs;
// it measures how much of the product the repair would have to reconstruct.
package sweep

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/rccm.repair/internal/db"
	"github.com/banshee-data/rccm.repair/internal/fsutil"
	"github.com/banshee-data/rccm.repair/internal/locate"
	"github.com/banshee-data/rccm.repair/internal/monitoring"
	"github.com/banshee-data/rccm.repair/internal/orbit"
	"github.com/banshee-data/rccm.repair/internal/rccm"
	"github.com/banshee-data/rccm.repair/internal/rccm/parse"
	"github.com/banshee-data/rccm.repair/internal/report"
	"github.com/banshee-data/rccm.repair/internal/timeutil"
)

// Aggregator runs the orbit sweep for one (path, block).
type Aggregator struct {
	FS           fsutil.FileSystem
	RadianceRoot string
	RCCMRoot     string
	Clock        timeutil.Clock

	// DB is optional; when present the run and every row are persisted.
	DB *db.DB
}

// Row is one tabulated orbit.
type Row struct {
	Orbit      int64
	Date       time.Time
	JulianDate float64
	Missing    rccm.Counts
	Total      int
	// ErrKind flags rows whose orbit failed; counts are zero for those.
	ErrKind string
}

// Report is the completed sweep.
type Report struct {
	Path  int
	Block int
	RunID string
	Rows  []Row
}

// Run enumerates the orbits present in both roots for the path, in ascending
// order, and tabulates Stage 1 missing counts per orbit. Per-orbit failures
// do not abort the sweep; they are recorded as flagged zero-count rows. An
// empty intersection is a hard failure.
func (a *Aggregator) Run(ctx context.Context, path, block int) (*Report, error) {
	if err := orbit.Validate(path, 0, block); err != nil {
		return nil, rccm.Wrap(rccm.KindInvalidArgument, "sweep.Run", err)
	}

	radSet, err := locate.OrbitSet(a.FS, a.RadianceRoot, path)
	if err != nil {
		return nil, err
	}
	maskSet, err := locate.OrbitSet(a.FS, a.RCCMRoot, path)
	if err != nil {
		return nil, err
	}
	orbits := locate.Intersect(radSet, maskSet)
	if len(orbits) == 0 {
		return nil, rccm.E(rccm.KindEmptyIntersection, "sweep.Run",
			"no orbit of path %d has both radiance and cloud mask inputs", path)
	}
	monitoring.Logf("[Sweep] path %d block %d: %d orbits to tabulate", path, block, len(orbits))

	rep := &Report{Path: path, Block: block}
	for _, o := range orbits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := Row{Orbit: o, Date: orbit.Date(o)}
		row.JulianDate = orbit.JulianDate(row.Date)
		counts, err := a.sweepOrbit(path, block, o)
		if err != nil {
			row.ErrKind = rccm.KindOf(err).String()
			monitoring.Logf("[Sweep] orbit %d: %v", o, err)
		} else {
			row.Missing = counts
			row.Total = counts.Total()
		}
		rep.Rows = append(rep.Rows, row)
	}

	if a.DB != nil {
		if err := a.persist(rep); err != nil {
			return nil, rccm.Wrap(rccm.KindSinkFailure, "sweep.Run", err)
		}
	}
	return rep, nil
}

// sweepOrbit runs Stage 0 and Stage 1 only for one orbit.
func (a *Aggregator) sweepOrbit(path, block int, o int64) (rccm.Counts, error) {
	maskFiles, err := locate.CameraFiles(a.FS, a.RCCMRoot, path, o)
	if err != nil {
		return rccm.Counts{}, err
	}
	radFiles, err := locate.CameraFiles(a.FS, a.RadianceRoot, path, o)
	if err != nil {
		return rccm.Counts{}, err
	}
	readers, err := parse.OpenMaskSet(a.FS, maskFiles)
	if err != nil {
		return rccm.Counts{}, rccm.Wrap(rccm.KindReaderFailure, "sweep.sweepOrbit", err)
	}
	tile, _, err := rccm.LoadTile(readers, block)
	if err != nil {
		return rccm.Counts{}, err
	}
	avail, err := parse.ReadAvailability(a.FS, radFiles, block)
	if err != nil {
		return rccm.Counts{}, rccm.Wrap(rccm.KindReaderFailure, "sweep.sweepOrbit", err)
	}
	_, counts := rccm.FlagUnobservable(tile, avail)
	return counts, nil
}

func (a *Aggregator) persist(rep *Report) error {
	run := &db.SweepRun{Path: rep.Path, Block: rep.Block, Started: a.Clock.Now()}
	if err := a.DB.InsertSweepRun(run); err != nil {
		return err
	}
	rep.RunID = run.RunID
	for _, row := range rep.Rows {
		err := a.DB.InsertSweepOrbit(&db.SweepOrbit{
			RunID:      run.RunID,
			Orbit:      row.Orbit,
			Date:       row.Date,
			JulianDate: row.JulianDate,
			Missing:    row.Missing,
			Total:      row.Total,
			ErrorKind:  row.ErrKind,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteTable appends the tabulated report as text.
func (r *Report) WriteTable(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "sweep path %d block %d (%d orbits)\n", r.Path, r.Block, len(r.Rows)); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "orbit\tdate\tjulian\tDF\tCF\tBF\tAF\tAN\tAA\tBA\tCA\tDA\tsum\terror")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			row.Orbit, row.Date.UTC().Format("2006-01-02"), row.JulianDate,
			row.Missing[0], row.Missing[1], row.Missing[2], row.Missing[3], row.Missing[4],
			row.Missing[5], row.Missing[6], row.Missing[7], row.Missing[8],
			row.Total, row.ErrKind)
	}
	return tw.Flush()
}

// Series converts the clean rows into chart-ready series.
func (r *Report) Series() report.SweepSeries {
	var s report.SweepSeries
	for _, row := range r.Rows {
		if row.ErrKind != "" {
			continue
		}
		s.Orbits = append(s.Orbits, row.Orbit)
		for _, cam := range rccm.Cameras() {
			s.Missing[cam] = append(s.Missing[cam], int64(row.Missing[cam]))
		}
		s.Total = append(s.Total, int64(row.Total))
	}
	return s
}
