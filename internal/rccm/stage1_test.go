package rccm

import "testing"

func TestFlagUnobservable(t *testing.T) {
	tile := uniformTile(ClassCloudHC)
	tile.Set(CameraDF, 10, 10, ClassMissing) // radiance present: stays a gap
	tile.Set(CameraDF, 20, 20, ClassMissing) // obscured
	tile.Set(CameraDF, 30, 30, ClassMissing) // edge

	avail := uniformAvailability(RadiancePresent)
	avail.Set(CameraDF, 20, 20, RadianceObscured)
	avail.Set(CameraDF, 30, 30, RadianceEdge)

	out, counts := FlagUnobservable(tile, avail)
	assertCell(t, out, CameraDF, 10, 10, ClassMissing)
	assertCell(t, out, CameraDF, 20, 20, ClassObscured)
	assertCell(t, out, CameraDF, 30, 30, ClassEdge)
	if counts[CameraDF] != 1 || counts.Total() != 1 {
		t.Fatalf("counts = %v, want one remaining gap", counts)
	}
}

// A pixel becomes 253 or 254 only when availability says so; valid and fill
// values pass through regardless of availability.
func TestFlagUnobservableSoundness(t *testing.T) {
	tile := uniformTile(ClassClearLC)
	tile.Set(CameraAN, 5, 5, ClassFill)
	tile.Set(CameraAN, 6, 6, ClassCloudHC)

	// Availability claims everything is edge; only true gaps may move.
	avail := uniformAvailability(RadianceEdge)
	out, counts := FlagUnobservable(tile, avail)

	assertCell(t, out, CameraAN, 5, 5, ClassFill)
	assertCell(t, out, CameraAN, 6, 6, ClassCloudHC)
	if counts.Total() != 0 {
		t.Fatalf("no gaps expected, counts = %v", counts)
	}
	// Nothing became obscured without the availability saying obscured.
	for _, cam := range Cameras() {
		if out.Tally(cam).Obscured != 0 {
			t.Fatalf("camera %s gained obscured pixels", cam)
		}
	}
}

func TestFlagUnobservableDoesNotMutateInput(t *testing.T) {
	tile := uniformTile(ClassCloudHC)
	tile.Set(CameraCF, 1, 1, ClassMissing)
	avail := uniformAvailability(RadianceEdge)

	FlagUnobservable(tile, avail)
	assertCell(t, tile, CameraCF, 1, 1, ClassMissing)
}
