// Package orbit provides shared constants and validation for the instrument's
// path/orbit/block geometry, plus orbit-to-date arithmetic for reports.
package orbit

import (
	"fmt"
	"time"
)

// Grid constants fixed by the mission design.
const (
	// NumPaths is the number of repeating ground tracks.
	NumPaths = 233

	// MinBlock and MaxBlock bound the along-track block numbering.
	MinBlock = 1
	MaxBlock = 180

	// RepeatOrbits is the ground-track repeat cycle: after this many orbits
	// the satellite flies the same path again.
	RepeatOrbits = 233

	// PathStride is the path-number advance between consecutive orbits.
	PathStride = 16

	// ReferenceOrbit is the first orbit of routine science acquisition; it
	// anchors both the path numbering and the epoch below.
	ReferenceOrbit = 995

	// ReferencePath is the path flown by ReferenceOrbit.
	ReferencePath = 37
)

// ReferenceEpoch is the equator-crossing time of ReferenceOrbit.
var ReferenceEpoch = time.Date(2000, time.February, 24, 0, 0, 0, 0, time.UTC)

// NodalPeriod is the orbital period (98.88 minutes).
const NodalPeriod = 5932800 * time.Millisecond

// ValidPath reports whether p is a legal path number.
func ValidPath(p int) bool { return p >= 1 && p <= NumPaths }

// ValidBlock reports whether b is a legal block number.
func ValidBlock(b int) bool { return b >= MinBlock && b <= MaxBlock }

// ValidOrbit reports whether o is a plausible orbit number.
func ValidOrbit(o int64) bool { return o >= 1 }

// PathForOrbit returns the path flown by the given orbit. Consecutive orbits
// advance the path by PathStride modulo the repeat cycle.
func PathForOrbit(o int64) int {
	d := (o - ReferenceOrbit) % RepeatOrbits
	if d < 0 {
		d += RepeatOrbits
	}
	p := (int64(ReferencePath-1) + d*PathStride) % NumPaths
	return int(p) + 1
}

// BelongsToPath reports whether the orbit flies the given path.
func BelongsToPath(o int64, path int) bool {
	return PathForOrbit(o) == path
}

// Validate checks a (path, orbit, block) request for range and consistency.
// A zero orbit skips the orbit checks (sweep mode discovers orbits itself).
func Validate(path int, o int64, block int) error {
	if !ValidPath(path) {
		return fmt.Errorf("path %d out of range 1..%d", path, NumPaths)
	}
	if !ValidBlock(block) {
		return fmt.Errorf("block %d out of range %d..%d", block, MinBlock, MaxBlock)
	}
	if o == 0 {
		return nil
	}
	if !ValidOrbit(o) {
		return fmt.Errorf("orbit %d out of range", o)
	}
	if !BelongsToPath(o, path) {
		return fmt.Errorf("orbit %d belongs to path %d, not path %d", o, PathForOrbit(o), path)
	}
	return nil
}

// Date returns the UTC acquisition time of the given orbit.
func Date(o int64) time.Time {
	return ReferenceEpoch.Add(time.Duration(o-ReferenceOrbit) * NodalPeriod)
}

// JulianDate converts a time to the astronomical Julian date.
func JulianDate(t time.Time) float64 {
	const unixEpochJD = 2440587.5
	return unixEpochJD + float64(t.UnixMilli())/86400000.0
}
