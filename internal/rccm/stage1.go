package rccm

// FlagUnobservable is Stage 1: it splits the ambiguous no-retrieval value 0
// into three distinct outcomes by cross-referencing radiance availability.
// A zero whose position was never inside the camera's swath becomes ClassEdge;
// a zero whose line of sight is blocked by terrain becomes ClassObscured; a
// zero with radiance present stays a true gap. Every non-zero value passes
// through unchanged.
//
// Downstream stages must not attempt to fill positions that were never
// observable; conflating the three cases fabricates classifications at swath
// edges that differ across cameras.
func FlagUnobservable(in *Tile, avail AvailabilityQuery) (*Tile, Counts) {
	out := in.Clone()
	for _, cam := range Cameras() {
		plane := out.Plane(cam)
		for s := 0; s < BlockSamples; s++ {
			for l := 0; l < BlockLines; l++ {
				i := s*BlockLines + l
				if plane[i] != ClassMissing {
					continue
				}
				switch avail.ObservabilityAt(cam, s, l) {
				case RadianceEdge:
					plane[i] = ClassEdge
				case RadianceObscured:
					plane[i] = ClassObscured
				}
			}
		}
	}
	return out, out.MissingCounts()
}
