package rccm

// Observability is the tri-state view of the companion radiance product that
// Stage 1 needs: for each (camera, sample, line), whether a radiance
// measurement exists, is structurally absent (outside the swath or block
// padding), or is absent because terrain blocks the line of sight.
//
// Band aggregation happens in the reader: a position counts as present when
// at least one of the four spectral bands carries a measurement.
type Observability uint8

const (
	// RadiancePresent means at least one band measured this position.
	RadiancePresent Observability = iota
	// RadianceEdge means the position lies outside the camera's swath or in
	// structural padding.
	RadianceEdge
	// RadianceObscured means terrain blocks the camera's line of sight.
	RadianceObscured
)

// String returns the tri-state name.
func (o Observability) String() string {
	switch o {
	case RadiancePresent:
		return "present"
	case RadianceEdge:
		return "edge"
	case RadianceObscured:
		return "obscured"
	}
	return "observability(?)"
}

// AvailabilityQuery is the narrow interface Stage 1 consumes. It is borrowed
// read-only for the duration of the stage and discarded afterwards; the
// flagger performs no I/O of its own.
type AvailabilityQuery interface {
	// ObservabilityAt reports the tri-state for (camera, sample, line).
	ObservabilityAt(cam Camera, sample, line int) Observability
}

// Availability is the in-memory AvailabilityQuery used by the readers: one
// aggregated tri-state per camera cell.
type Availability struct {
	states []Observability // NumCameras * PlaneCells, same layout as Tile
}

// NewAvailability returns an Availability with every position present.
func NewAvailability() *Availability {
	return &Availability{states: make([]Observability, NumCameras*PlaneCells)}
}

// ObservabilityAt implements AvailabilityQuery.
func (a *Availability) ObservabilityAt(cam Camera, sample, line int) Observability {
	return a.states[idx(cam, sample, line)]
}

// Set stores the tri-state for (camera, sample, line).
func (a *Availability) Set(cam Camera, sample, line int, o Observability) {
	a.states[idx(cam, sample, line)] = o
}

// Plane returns the cam plane of tri-states in sample-major order, aliasing
// the underlying storage.
func (a *Availability) Plane(cam Camera) []Observability {
	off := int(cam) * PlaneCells
	return a.states[off : off+PlaneCells]
}
