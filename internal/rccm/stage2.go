package rccm

import "sort"

// Stage2Options selects the optional widening behaviour of the cross-camera
// filler.
type Stage2Options struct {
	// Edge enables the edge-extension rule: copy a single valid neighbour
	// into the target when the other neighbour sees nothing at that position.
	Edge bool
}

// FillFromNeighbours is Stage 2, the central cross-camera inference. Cameras
// are processed in ascending order of their Stage 1 missing count (ties broken
// by camera index) so that each repaired camera becomes an improved reference
// for the neighbours processed after it. For each neighbour the reference is
// the already-processed plane when available, otherwise the Stage 1 plane.
//
// The agreement rule always applies: a gap becomes class v when both
// neighbour references hold the same valid v. With Edge enabled, remaining
// gaps additionally copy the one valid neighbour when the other neighbour
// holds 0 or 254, consulting the more oblique neighbour first.
func FillFromNeighbours(in *Tile, counts Counts, opts Stage2Options) (*Tile, Counts) {
	out := in.Clone()

	order := make([]Camera, 0, NumCameras)
	for _, cam := range Cameras() {
		order = append(order, cam)
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if counts[a] != counts[b] {
			return counts[a] < counts[b]
		}
		return a < b
	})

	var processed [NumCameras]bool
	ref := func(n Camera) []ClassCode {
		if processed[n] {
			return out.Plane(n)
		}
		return in.Plane(n)
	}

	for _, cam := range order {
		target := out.Plane(cam)
		na, nb := cam.Neighbours()
		refA, refB := ref(na), ref(nb)

		// Agreement rule, one pass per valid class in fixed order. Each cell
		// is written at most once per stage, so repeated application is
		// idempotent.
		for _, v := range validClasses {
			for i, cur := range target {
				if cur == ClassMissing && refA[i] == v && refB[i] == v {
					target[i] = v
				}
			}
		}

		if opts.Edge {
			first, second := cam.NeighboursInclinedFirst()
			refFirst, refSecond := ref(first), ref(second)
			for i, cur := range target {
				if cur != ClassMissing {
					continue
				}
				if v := refFirst[i]; v.Valid() && extendable(refSecond[i]) {
					target[i] = v
					continue
				}
				// The second check only fires while the pixel is still
				// missing; the first match wins.
				if v := refSecond[i]; v.Valid() && extendable(refFirst[i]) {
					target[i] = v
				}
			}
		}

		processed[cam] = true
	}
	return out, out.MissingCounts()
}

// extendable reports whether a neighbour value permits the edge-extension
// copy from the opposite neighbour: the position must be a gap or lie beyond
// that neighbour's swath.
func extendable(v ClassCode) bool {
	return v == ClassMissing || v == ClassEdge
}
