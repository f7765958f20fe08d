package rccm

import "fmt"

// ClassCode is the byte-valued classification tag carried by every tile cell.
// The values are fixed by the RCCM product specification and must survive a
// round trip through every stage unchanged unless a stage explicitly rewrites
// a gap.
type ClassCode uint8

const (
	// ClassMissing marks a pixel that is observable but carries no retrieval.
	ClassMissing ClassCode = 0
	// ClassCloudHC is cloud, high confidence.
	ClassCloudHC ClassCode = 1
	// ClassCloudLC is cloud, low confidence.
	ClassCloudLC ClassCode = 2
	// ClassClearLC is clear, low confidence.
	ClassClearLC ClassCode = 3
	// ClassClearHC is clear, high confidence.
	ClassClearHC ClassCode = 4
	// ClassObscured marks a pixel whose line of sight is blocked by terrain.
	ClassObscured ClassCode = 253
	// ClassEdge marks a pixel outside the camera's instantaneous swath.
	ClassEdge ClassCode = 254
	// ClassFill is structural padding outside the block.
	ClassFill ClassCode = 255
)

// Valid reports whether c is one of the four retrieved observation classes.
func (c ClassCode) Valid() bool {
	return c >= ClassCloudHC && c <= ClassClearHC
}

// Unobservable reports whether c marks a position that was never observable.
func (c ClassCode) Unobservable() bool {
	return c == ClassObscured || c == ClassEdge || c == ClassFill
}

// Known reports whether c belongs to the enumerated ClassCode vocabulary.
// Out-of-vocabulary values are preserved verbatim by the pipeline but are
// counted as anomalies at load time.
func (c ClassCode) Known() bool {
	return c <= ClassClearHC || c.Unobservable()
}

// String returns the short product-vocabulary name for c.
func (c ClassCode) String() string {
	switch c {
	case ClassMissing:
		return "missing"
	case ClassCloudHC:
		return "cld-hi"
	case ClassCloudLC:
		return "cld-lo"
	case ClassClearLC:
		return "clr-lo"
	case ClassClearHC:
		return "clr-hi"
	case ClassObscured:
		return "obscured"
	case ClassEdge:
		return "edge"
	case ClassFill:
		return "fill"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// validClasses is the fixed iteration order for rules that consider each
// retrieved class in turn.
var validClasses = [4]ClassCode{ClassCloudHC, ClassCloudLC, ClassClearLC, ClassClearHC}

// tiePreference is the majority-vote tie-break order: prefer high confidence,
// prefer clear over cloud when counts tie.
var tiePreference = [4]ClassCode{ClassClearHC, ClassClearLC, ClassCloudLC, ClassCloudHC}
