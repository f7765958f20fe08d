// Command rccm repairs the camera-by-camera cloud mask for one orbit and
// block, or sweeps every orbit of a path to tabulate missing-value counts.
//
// Usage:
//
//	rccm [flags] <path> <block>
//
// The positional arguments select the ground track and the block. With
// -sweep the tool tabulates Stage 1 missing counts for every orbit that has
// input files in both roots (orbits with incomplete inputs are flagged rows);
// otherwise -orbit selects the single orbit to repair.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/rccm.repair/internal/config"
	"github.com/banshee-data/rccm.repair/internal/db"
	"github.com/banshee-data/rccm.repair/internal/fsutil"
	"github.com/banshee-data/rccm.repair/internal/locate"
	"github.com/banshee-data/rccm.repair/internal/monitoring"
	"github.com/banshee-data/rccm.repair/internal/orbit"
	"github.com/banshee-data/rccm.repair/internal/rccm"
	"github.com/banshee-data/rccm.repair/internal/rccm/parse"
	"github.com/banshee-data/rccm.repair/internal/render"
	"github.com/banshee-data/rccm.repair/internal/report"
	"github.com/banshee-data/rccm.repair/internal/store"
	"github.com/banshee-data/rccm.repair/internal/sweep"
	"github.com/banshee-data/rccm.repair/internal/timeutil"
	"github.com/banshee-data/rccm.repair/internal/version"
)

var (
	sweepMode     = flag.Bool("sweep", false, "Sweep all orbits of the path instead of repairing one")
	orbitFlag     = flag.Int64("orbit", 0, "Orbit to repair (required unless -sweep)")
	edgeFlag      = flag.Bool("edge", false, "Enable the Stage 2 edge-extension rule")
	testIDFlag    = flag.String("test-id", "", "Evaluation harness id (empty disables the harness)")
	firstLineFlag = flag.String("first-line", "", "Comma-separated nine per-camera first lines to blank (negative skips the camera)")
	lastLineFlag  = flag.String("last-line", "", "Comma-separated nine per-camera last lines to blank (negative skips the camera)")
	radianceRoot  = flag.String("radiance-root", "", "Directory holding the radiance block files")
	rccmRoot      = flag.String("rccm-root", "", "Directory holding the cloud mask block files")
	logDirFlag    = flag.String("log-dir", "", "Directory for text reports (empty disables the log sink)")
	saveDirFlag   = flag.String("save-dir", "", "Directory for persisted stage tiles (empty disables the save sink)")
	mapDirFlag    = flag.String("map-dir", "", "Directory for rendered maps (empty disables the map sink)")
	dbPathFlag    = flag.String("db-path", "", "Optional sqlite database for sweep results and the save index")
	configFile    = flag.String("config", "", "Path to a JSON configuration file")
	chartFlag     = flag.Bool("chart", false, "Render an HTML chart next to the sweep report (needs -log-dir)")
	verboseFlag   = flag.Bool("verbose", false, "Report stage boundaries on stderr")
	debugMode     = flag.Bool("debug", false, "Keep internal diagnostic logging enabled")
	versionFlag   = flag.Bool("version", false, "Print version information and exit")
)

// Exit codes. Distinct codes let batch drivers tell input problems from
// output problems without parsing stderr.
const (
	exitOK                = 0
	exitInternal          = 1
	exitInvalidArgument   = 2
	exitInputDiscovery    = 3
	exitReader            = 4
	exitSink              = 5
	exitEmptyIntersection = 6
)

// exitCodeFor maps an error to its exit code via the error kind.
func exitCodeFor(err error) int {
	switch rccm.KindOf(err) {
	case rccm.KindInvalidArgument:
		return exitInvalidArgument
	case rccm.KindMissing, rccm.KindIncomplete, rccm.KindAmbiguous:
		return exitInputDiscovery
	case rccm.KindReaderFailure, rccm.KindShapeMismatch:
		return exitReader
	case rccm.KindSinkFailure:
		return exitSink
	case rccm.KindEmptyIntersection:
		return exitEmptyIntersection
	}
	return exitInternal
}

// parseCSVIntSlice parses a comma-separated list of ints
func parseCSVIntSlice(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid int '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// verboseObserver reports stage boundaries on the standard logger.
type verboseObserver struct{}

func (verboseObserver) StageStart(stage string) {
	log.Printf("[rccm] %s start", stage)
}

func (verboseObserver) StageDone(stage string, counts rccm.Counts) {
	log.Printf("[rccm] %s done, %d gaps remain", stage, counts.Total())
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("rccm %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		os.Exit(exitOK)
	}
	if !*debugMode {
		monitoring.SetLogger(nil)
	}

	code, err := run(context.Background(), flag.Args())
	if err != nil {
		log.Printf("[rccm] %v", err)
	}
	os.Exit(code)
}

func run(ctx context.Context, args []string) (int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return exitInvalidArgument, err
	}

	if len(args) != 2 {
		return exitInvalidArgument, fmt.Errorf("usage: rccm [flags] <path> <block>")
	}
	path, err := strconv.Atoi(args[0])
	if err != nil {
		return exitInvalidArgument, fmt.Errorf("invalid path %q: %w", args[0], err)
	}
	block, err := strconv.Atoi(args[1])
	if err != nil {
		return exitInvalidArgument, fmt.Errorf("invalid block %q: %w", args[1], err)
	}
	if err := orbit.Validate(path, *orbitFlag, block); err != nil {
		return exitInvalidArgument, rccm.Wrap(rccm.KindInvalidArgument, "rccm", err)
	}

	radRoot := firstNonEmpty(*radianceRoot, config.GetString(cfg.RadianceRoot))
	maskRoot := firstNonEmpty(*rccmRoot, config.GetString(cfg.RCCMRoot))
	if radRoot == "" || maskRoot == "" {
		return exitInvalidArgument, fmt.Errorf("both -radiance-root and -rccm-root are required")
	}

	var database *db.DB
	if p := firstNonEmpty(*dbPathFlag, config.GetString(cfg.DBPath)); p != "" {
		database, err = db.NewDB(p)
		if err != nil {
			return exitSink, rccm.Wrap(rccm.KindSinkFailure, "rccm", err)
		}
		defer database.Close()
	}

	fsys := fsutil.OSFileSystem{}
	clock := timeutil.RealClock{}

	if *sweepMode {
		err := runSweep(ctx, fsys, clock, database, cfg, path, block, radRoot, maskRoot)
		if err != nil {
			return exitCodeFor(err), err
		}
		return exitOK, nil
	}

	if *orbitFlag == 0 {
		return exitInvalidArgument, fmt.Errorf("-orbit is required unless -sweep is given")
	}
	err = runRepair(ctx, fsys, clock, database, cfg, path, *orbitFlag, block, radRoot, maskRoot)
	if err != nil {
		return exitCodeFor(err), err
	}
	return exitOK, nil
}

// loadConfig reads the optional config file. Flags always win over file
// values; the file only fills what the command line leaves unset.
func loadConfig() (*config.RepairConfig, error) {
	if *configFile == "" {
		return &config.RepairConfig{}, nil
	}
	return config.Load(*configFile)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func buildOptions(cfg *config.RepairConfig) (rccm.Options, error) {
	opts := rccm.NewOptions()
	opts.Edge = *edgeFlag || cfg.GetEdge()
	opts.TestID = firstNonEmpty(*testIDFlag, cfg.GetTestID())
	opts.Stage3.MaxIterations = cfg.GetStage3MaxIter()

	first, err := parseCSVIntSlice(*firstLineFlag)
	if err != nil {
		return opts, fmt.Errorf("-first-line: %w", err)
	}
	last, err := parseCSVIntSlice(*lastLineFlag)
	if err != nil {
		return opts, fmt.Errorf("-last-line: %w", err)
	}
	if first == nil {
		first = cfg.FirstLine
	}
	if last == nil {
		last = cfg.LastLine
	}
	if first != nil && len(first) != rccm.NumCameras {
		return opts, fmt.Errorf("-first-line needs %d entries, got %d", rccm.NumCameras, len(first))
	}
	if last != nil && len(last) != rccm.NumCameras {
		return opts, fmt.Errorf("-last-line needs %d entries, got %d", rccm.NumCameras, len(last))
	}
	opts.FirstLine = config.GetLine(first)
	opts.LastLine = config.GetLine(last)
	return opts, nil
}

func runRepair(ctx context.Context, fsys fsutil.FileSystem, clock timeutil.Clock, database *db.DB,
	cfg *config.RepairConfig, path int, o int64, block int, radRoot, maskRoot string) error {

	opts, err := buildOptions(cfg)
	if err != nil {
		return rccm.Wrap(rccm.KindInvalidArgument, "rccm", err)
	}

	maskFiles, err := locate.CameraFiles(fsys, maskRoot, path, o)
	if err != nil {
		return err
	}
	radFiles, err := locate.CameraFiles(fsys, radRoot, path, o)
	if err != nil {
		return err
	}
	readers, err := parse.OpenMaskSet(fsys, maskFiles)
	if err != nil {
		return rccm.Wrap(rccm.KindReaderFailure, "rccm", err)
	}
	avail, err := parse.ReadAvailability(fsys, radFiles, block)
	if err != nil {
		return rccm.Wrap(rccm.KindReaderFailure, "rccm", err)
	}

	acquired := orbit.Date(o)
	var sinks rccm.Sinks
	tag := fmt.Sprintf("P%03d-O%06d-B%03d", path, o, block)

	if dir := firstNonEmpty(*logDirFlag, config.GetString(cfg.LogDir)); dir != "" {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return rccm.Wrap(rccm.KindSinkFailure, "rccm", err)
		}
		w, err := fsys.Create(fmt.Sprintf("%s/%s_RCCM.log", dir, tag))
		if err != nil {
			return rccm.Wrap(rccm.KindSinkFailure, "rccm", err)
		}
		defer w.Close()
		sinks.Log = report.NewWriter(w)
	}
	if dir := firstNonEmpty(*saveDirFlag, config.GetString(cfg.SaveDir)); dir != "" {
		sinks.Save = &store.TileStore{
			FS: fsys, Root: dir, Clock: clock, DB: database,
			Path: path, Orbit: o, Block: block,
			Acquired: acquired, TestID: opts.TestID, Edge: opts.Edge,
		}
	}
	if dir := firstNonEmpty(*mapDirFlag, config.GetString(cfg.MapDir)); dir != "" {
		sinks.Map = &render.Sink{FS: fsys, Dir: dir, Prefix: tag}
	}

	var obs rccm.Observer
	if *verboseFlag {
		obs = verboseObserver{}
	}

	res, err := rccm.Repair(ctx, readers, avail, block, opts, sinks, obs)
	if err != nil {
		return err
	}

	final := res.Missing()
	fmt.Printf("%s: %d stages, %d gaps remain", tag, len(res.Stages), final.Total())
	if !res.Converged {
		fmt.Printf(" (not converged)")
	}
	fmt.Println()
	return nil
}

func runSweep(ctx context.Context, fsys fsutil.FileSystem, clock timeutil.Clock, database *db.DB,
	cfg *config.RepairConfig, path, block int, radRoot, maskRoot string) error {

	agg := &sweep.Aggregator{
		FS: fsys, RadianceRoot: radRoot, RCCMRoot: maskRoot,
		Clock: clock, DB: database,
	}
	rep, err := agg.Run(ctx, path, block)
	if err != nil {
		return err
	}
	if err := rep.WriteTable(os.Stdout); err != nil {
		return rccm.Wrap(rccm.KindSinkFailure, "rccm", err)
	}

	logDir := firstNonEmpty(*logDirFlag, config.GetString(cfg.LogDir))
	if logDir != "" {
		if err := fsys.MkdirAll(logDir, 0755); err != nil {
			return rccm.Wrap(rccm.KindSinkFailure, "rccm", err)
		}
		name := fmt.Sprintf("%s/P%03d-B%03d_sweep.txt", logDir, path, block)
		w, err := fsys.Create(name)
		if err != nil {
			return rccm.Wrap(rccm.KindSinkFailure, "rccm", err)
		}
		werr := rep.WriteTable(w)
		if cerr := w.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return rccm.Wrap(rccm.KindSinkFailure, "rccm", werr)
		}
	}
	if *chartFlag {
		if logDir == "" {
			return rccm.E(rccm.KindInvalidArgument, "rccm", "-chart needs -log-dir")
		}
		name := fmt.Sprintf("%s/P%03d-B%03d_sweep.html", logDir, path, block)
		w, err := fsys.Create(name)
		if err != nil {
			return rccm.Wrap(rccm.KindSinkFailure, "rccm", err)
		}
		title := fmt.Sprintf("missing pixels, path %d block %d", path, block)
		werr := report.WriteSweepChart(w, title, rep.Series())
		if cerr := w.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return rccm.Wrap(rccm.KindSinkFailure, "rccm", werr)
		}
	}
	return nil
}
