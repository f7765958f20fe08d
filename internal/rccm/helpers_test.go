package rccm

import "testing"

// uniformTile returns a tile with every cell of every camera set to v.
func uniformTile(v ClassCode) *Tile {
	t := NewTile()
	for i := range t.cells {
		t.cells[i] = v
	}
	return t
}

// uniformAvailability returns an availability with every position in state o.
func uniformAvailability(o Observability) *Availability {
	a := NewAvailability()
	for i := range a.states {
		a.states[i] = o
	}
	return a
}

// planeReader serves a fixed plane for any block. Failing variants live in
// stage0_test.go.
type planeReader struct {
	plane []ClassCode
}

func (r planeReader) ReadPlane(block int) ([]ClassCode, error) {
	return r.plane, nil
}

// readersFor adapts a tile into nine loader handles.
func readersFor(t *Tile) [NumCameras]CameraReader {
	var out [NumCameras]CameraReader
	for _, cam := range Cameras() {
		plane := make([]ClassCode, PlaneCells)
		copy(plane, t.Plane(cam))
		out[cam] = planeReader{plane: plane}
	}
	return out
}

// assertCell fails unless the tile holds want at the given position.
func assertCell(t *testing.T, tile *Tile, cam Camera, s, l int, want ClassCode) {
	t.Helper()
	if got := tile.At(cam, s, l); got != want {
		t.Fatalf("%s[%d,%d] = %v, want %v", cam, s, l, got, want)
	}
}
