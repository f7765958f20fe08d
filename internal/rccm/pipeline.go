package rccm

import (
	"context"

	"github.com/banshee-data/rccm.repair/internal/monitoring"
)

// Stage names as they appear in reports, persisted filenames and observer
// callbacks.
const (
	StageLoad      = "rccm0"
	StageFlag      = "rccm1"
	StageCross     = "rccm2"
	StageNeighbour = "rccm3"
)

// Options configures a single-block repair run. Defaults are carried by the
// zero value except the harness line ranges, which use -1 as the "skip
// camera" sentinel (see NewOptions).
type Options struct {
	// Edge enables Stage 2's edge-extension rule.
	Edge bool

	// TestID activates the evaluation harness when non-empty. The harness
	// checkpoints the raw tile, blanks the configured line ranges, and
	// computes per-camera confusion matrices after Stage 2 and Stage 3.
	TestID string

	// FirstLine and LastLine bound the per-camera blanked region. A camera
	// with a negative bound, or LastLine < FirstLine, is skipped.
	FirstLine [NumCameras]int
	LastLine  [NumCameras]int

	// Stage3 carries the neighbourhood filler configuration.
	Stage3 Stage3Options
}

// NewOptions returns Options with the harness disabled and every line range
// set to the skip sentinel.
func NewOptions() Options {
	opts := Options{}
	for i := range opts.FirstLine {
		opts.FirstLine[i] = -1
		opts.LastLine[i] = -1
	}
	return opts
}

// HarnessActive reports whether the evaluation harness runs.
func (o Options) HarnessActive() bool { return o.TestID != "" }

// regions converts the line arrays into per-camera ranges.
func (o Options) regions() [NumCameras]LineRange {
	var out [NumCameras]LineRange
	for _, cam := range Cameras() {
		out[cam] = LineRange{First: o.FirstLine[cam], Last: o.LastLine[cam]}
	}
	return out
}

// Observer receives stage-boundary notifications. The default is a no-op;
// the CLI installs a verbose observer when asked.
type Observer interface {
	StageStart(stage string)
	StageDone(stage string, counts Counts)
}

type noopObserver struct{}

func (noopObserver) StageStart(string)        {}
func (noopObserver) StageDone(string, Counts) {}

// NoopObserver returns the default observer.
func NoopObserver() Observer { return noopObserver{} }

// LogSink receives formatted diagnostics. Implemented by the report package.
type LogSink interface {
	// StageReport appends category counts and per-camera percentages for a
	// completed stage.
	StageReport(stage string, tile *Tile, counts Counts) error
	// ConfusionReport appends the harness matrices keyed by stage.
	ConfusionReport(stage string, matrices [NumCameras]ConfusionMatrix) error
}

// TileSink persists a stage's tile. Implemented by the store package.
type TileSink interface {
	SaveTile(stage string, tile *Tile) error
}

// MapSink renders a stage's tile. Implemented by the render package.
type MapSink interface {
	RenderTile(stage string, tile *Tile) error
}

// Sinks bundles the optional output destinations. A nil field disables that
// output.
type Sinks struct {
	Log  LogSink
	Save TileSink
	Map  MapSink
}

// StageResult records one executed stage and the gap counts it left behind.
type StageResult struct {
	Name   string
	Counts Counts
}

// Result is the outcome of a repair run.
type Result struct {
	// Tile is the final tile of the last executed stage.
	Tile *Tile
	// Stages lists executed stages in order with their remaining gap counts.
	Stages []StageResult
	// Confusion holds the harness matrices keyed by stage (StageCross,
	// StageNeighbour). Nil when the harness is inactive.
	Confusion map[string][NumCameras]ConfusionMatrix
	// Converged is false when Stage 3 left residual gaps; the run still
	// succeeds and the residual count is in the last Stages entry.
	Converged bool
}

// Missing returns the final per-camera gap counts.
func (r *Result) Missing() Counts {
	if len(r.Stages) == 0 {
		return Counts{}
	}
	return r.Stages[len(r.Stages)-1].Counts
}

// Repair runs the four-stage pipeline for one block. Later stages are
// short-circuited as soon as no camera holds a gap; skipping them avoids
// gratuitous neighbourhood inference over fully-known tiles. Cancellation is
// cooperative at stage boundaries.
func Repair(ctx context.Context, readers [NumCameras]CameraReader, avail AvailabilityQuery,
	block int, opts Options, sinks Sinks, obs Observer) (*Result, error) {

	if obs == nil {
		obs = NoopObserver()
	}
	res := &Result{Converged: true}

	obs.StageStart(StageLoad)
	tile, counts, err := LoadTile(readers, block)
	if err != nil {
		return nil, err
	}
	obs.StageDone(StageLoad, counts)
	if err := emit(sinks, StageLoad, tile, counts); err != nil {
		return nil, err
	}
	res.Stages = append(res.Stages, StageResult{StageLoad, counts})

	var checkpoint *Tile
	regions := opts.regions()
	if opts.HarnessActive() {
		checkpoint = tile.Clone()
		blanked := blankRegions(tile, regions)
		if blanked > 0 {
			monitoring.Logf("[Pipeline] harness %q blanked %d pixels", opts.TestID, blanked)
		}
		res.Confusion = make(map[string][NumCameras]ConfusionMatrix)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	obs.StageStart(StageFlag)
	tile, counts = FlagUnobservable(tile, avail)
	obs.StageDone(StageFlag, counts)
	if err := emit(sinks, StageFlag, tile, counts); err != nil {
		return nil, err
	}
	res.Stages = append(res.Stages, StageResult{StageFlag, counts})
	res.Tile = tile
	if counts.Total() == 0 {
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	obs.StageStart(StageCross)
	tile, counts = FillFromNeighbours(tile, counts, Stage2Options{Edge: opts.Edge})
	obs.StageDone(StageCross, counts)
	if err := emit(sinks, StageCross, tile, counts); err != nil {
		return nil, err
	}
	res.Stages = append(res.Stages, StageResult{StageCross, counts})
	res.Tile = tile
	if opts.HarnessActive() {
		m := CompareTiles(checkpoint, tile, regions)
		res.Confusion[StageCross] = m
		if err := emitConfusion(sinks, StageCross, m); err != nil {
			return nil, err
		}
	}
	if counts.Total() == 0 {
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	obs.StageStart(StageNeighbour)
	tile, counts = FillFromNeighbourhood(tile, counts, opts.Stage3)
	obs.StageDone(StageNeighbour, counts)
	if err := emit(sinks, StageNeighbour, tile, counts); err != nil {
		return nil, err
	}
	res.Stages = append(res.Stages, StageResult{StageNeighbour, counts})
	res.Tile = tile
	if opts.HarnessActive() {
		m := CompareTiles(checkpoint, tile, regions)
		res.Confusion[StageNeighbour] = m
		if err := emitConfusion(sinks, StageNeighbour, m); err != nil {
			return nil, err
		}
	}
	if counts.Total() > 0 {
		res.Converged = false
		monitoring.Logf("[Pipeline] %d gaps remain after %s", counts.Total(), StageNeighbour)
	}
	return res, nil
}

// blankRegions overwrites the harness line ranges with ClassMissing and
// returns the number of pixels touched.
func blankRegions(tile *Tile, regions [NumCameras]LineRange) int {
	blanked := 0
	for _, cam := range Cameras() {
		r := regions[cam]
		if r.Empty() {
			continue
		}
		r = r.clamp()
		for s := 0; s < BlockSamples; s++ {
			for l := r.First; l <= r.Last; l++ {
				tile.Set(cam, s, l, ClassMissing)
				blanked++
			}
		}
	}
	return blanked
}

func emit(sinks Sinks, stage string, tile *Tile, counts Counts) error {
	if sinks.Log != nil {
		if err := sinks.Log.StageReport(stage, tile, counts); err != nil {
			return Wrap(KindSinkFailure, "rccm.Repair", err)
		}
	}
	if sinks.Save != nil {
		if err := sinks.Save.SaveTile(stage, tile); err != nil {
			return Wrap(KindSinkFailure, "rccm.Repair", err)
		}
	}
	if sinks.Map != nil {
		if err := sinks.Map.RenderTile(stage, tile); err != nil {
			return Wrap(KindSinkFailure, "rccm.Repair", err)
		}
	}
	return nil
}

func emitConfusion(sinks Sinks, stage string, m [NumCameras]ConfusionMatrix) error {
	if sinks.Log == nil {
		return nil
	}
	if err := sinks.Log.ConfusionReport(stage, m); err != nil {
		return Wrap(KindSinkFailure, "rccm.Repair", err)
	}
	return nil
}
