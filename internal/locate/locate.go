// Package locate resolves input files on disk from their product filenames.
//
// Product files follow the native naming convention, e.g.
//
//	MISR_AM1_GRP_RCCM_GM_P037_O029058_DF_F04_0025.dat
//	MISR_AM1_GRP_TERRAIN_GM_P037_O029058_AN_F03_0024.dat
//
// The locator only inspects the P (path), O (orbit) and camera tokens; the
// remaining tokens and the extension are free.
package locate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/rccm.repair/internal/fsutil"
	"github.com/banshee-data/rccm.repair/internal/rccm"
)

// Name is the parsed identity of one product file.
type Name struct {
	Path   int
	Orbit  int64
	Camera rccm.Camera
}

// ParseName extracts the path, orbit and camera tokens from a product file
// basename. The second return is false when the name is not a product file.
func ParseName(base string) (Name, bool) {
	var out Name
	havePath, haveOrbit, haveCamera := false, false, false
	base = strings.TrimSuffix(base, suffix(base))
	for _, tok := range strings.Split(base, "_") {
		switch {
		case !havePath && len(tok) == 4 && tok[0] == 'P':
			v, err := strconv.Atoi(tok[1:])
			if err == nil {
				out.Path = v
				havePath = true
			}
		case !haveOrbit && len(tok) >= 6 && tok[0] == 'O' && allDigits(tok[1:]):
			v, err := strconv.ParseInt(tok[1:], 10, 64)
			if err == nil {
				out.Orbit = v
				haveOrbit = true
			}
		case !haveCamera && len(tok) == 2:
			if cam := rccm.CameraByName(tok); cam >= 0 {
				out.Camera = cam
				haveCamera = true
			}
		}
	}
	return out, havePath && haveOrbit && haveCamera
}

func suffix(base string) string {
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[i:]
	}
	return ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// CameraFiles resolves the ordered nine-element camera file vector for one
// (path, orbit) under root. It fails with Missing when no file matches,
// Incomplete when some camera has no file, and Ambiguous when a camera has
// more than one.
func CameraFiles(fsys fsutil.FileSystem, root string, path int, o int64) ([rccm.NumCameras]string, error) {
	var out [rccm.NumCameras]string
	entries, err := fsys.ReadDir(root)
	if err != nil {
		return out, rccm.Wrap(rccm.KindReaderFailure, "locate.CameraFiles", err)
	}

	var perCamera [rccm.NumCameras][]string
	total := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, ok := ParseName(e.Name())
		if !ok || n.Path != path || n.Orbit != o {
			continue
		}
		perCamera[n.Camera] = append(perCamera[n.Camera], root+"/"+e.Name())
		total++
	}
	if total == 0 {
		return out, rccm.E(rccm.KindMissing, "locate.CameraFiles",
			"no files for path %d orbit %d under %s", path, o, root)
	}
	for _, cam := range rccm.Cameras() {
		switch len(perCamera[cam]) {
		case 0:
			return out, rccm.E(rccm.KindIncomplete, "locate.CameraFiles",
				"camera %s has no file for path %d orbit %d under %s", cam, path, o, root)
		case 1:
			out[cam] = perCamera[cam][0]
		default:
			return out, rccm.E(rccm.KindAmbiguous, "locate.CameraFiles",
				"camera %s has %d files for path %d orbit %d under %s", cam, len(perCamera[cam]), path, o, root)
		}
	}
	return out, nil
}

// OrbitSet lists root and returns the set of orbit numbers that have at
// least one product file for the given path.
func OrbitSet(fsys fsutil.FileSystem, root string, path int) (map[int64]bool, error) {
	entries, err := fsys.ReadDir(root)
	if err != nil {
		return nil, rccm.Wrap(rccm.KindReaderFailure, "locate.OrbitSet",
			fmt.Errorf("list %s: %w", root, err))
	}
	out := make(map[int64]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := ParseName(e.Name()); ok && n.Path == path {
			out[n.Orbit] = true
		}
	}
	return out, nil
}

// Intersect returns the ascending orbits present in both sets.
func Intersect(a, b map[int64]bool) []int64 {
	var out []int64
	for o := range a {
		if b[o] {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
