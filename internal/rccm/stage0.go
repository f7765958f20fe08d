package rccm

import (
	"github.com/banshee-data/rccm.repair/internal/monitoring"
)

// CameraReader supplies one camera's standard cloud mask plane for a block.
// Implementations live in the parse package; the loader only sees this
// contract.
type CameraReader interface {
	// ReadPlane returns a 512×128 plane in sample-major order for the given
	// block index.
	ReadPlane(block int) ([]ClassCode, error)
}

// LoadTile ingests the nine per-camera standard masks into a fresh tile.
// Readers are in native camera order. Values outside the enumerated ClassCode
// vocabulary are preserved verbatim; they are counted and logged as anomalies
// but never rewritten.
func LoadTile(readers [NumCameras]CameraReader, block int) (*Tile, Counts, error) {
	tile := NewTile()
	for _, cam := range Cameras() {
		plane, err := readers[cam].ReadPlane(block)
		if err != nil {
			return nil, Counts{}, Wrap(KindReaderFailure, "rccm.LoadTile", err)
		}
		if len(plane) != PlaneCells {
			return nil, Counts{}, E(KindShapeMismatch, "rccm.LoadTile",
				"camera %s block %d: plane has %d cells, want %d", cam, block, len(plane), PlaneCells)
		}
		tile.SetPlane(cam, plane)

		anomalies := 0
		for _, v := range plane {
			if !v.Known() {
				anomalies++
			}
		}
		if anomalies > 0 {
			monitoring.Logf("[Stage0] camera %s block %d: %d cells outside the ClassCode vocabulary (preserved)",
				cam, block, anomalies)
		}
	}
	return tile, tile.MissingCounts(), nil
}
