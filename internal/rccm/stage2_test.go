package rccm

import "testing"

// Agreement with both forward neighbours repairs the fore-most camera (S1).
func TestStage2Agreement(t *testing.T) {
	tile := uniformTile(ClassCloudHC)
	tile.Set(CameraDF, 10, 10, ClassMissing)
	counts := tile.MissingCounts()

	out, left := FillFromNeighbours(tile, counts, Stage2Options{})
	assertCell(t, out, CameraDF, 10, 10, ClassCloudHC)
	if left.Total() != 0 {
		t.Fatalf("remaining = %v", left)
	}
}

// A full stripe fills from two agreeing neighbours (S3).
func TestStage2AgreementStripe(t *testing.T) {
	tile := uniformTile(ClassClearLC)
	for s := 0; s < BlockSamples; s++ {
		for l := 40; l <= 49; l++ {
			tile.Set(CameraDF, s, l, ClassMissing)
		}
	}
	out, left := FillFromNeighbours(tile, tile.MissingCounts(), Stage2Options{})
	for s := 0; s < BlockSamples; s += 101 {
		for l := 40; l <= 49; l++ {
			assertCell(t, out, CameraDF, s, l, ClassClearLC)
		}
	}
	if left.Total() != 0 {
		t.Fatalf("remaining = %v", left)
	}
}

// Disagreeing neighbours leave the gap alone (S4).
func TestStage2Disagreement(t *testing.T) {
	tile := uniformTile(ClassClearLC)
	for s := 0; s < BlockSamples; s++ {
		for l := 40; l <= 49; l++ {
			tile.Set(CameraDF, s, l, ClassMissing)
			tile.Set(CameraBF, s, l, ClassClearHC)
		}
	}
	out, left := FillFromNeighbours(tile, tile.MissingCounts(), Stage2Options{})
	assertCell(t, out, CameraDF, 100, 45, ClassMissing)
	if left[CameraDF] != BlockSamples*10 {
		t.Fatalf("remaining DF = %d", left[CameraDF])
	}
}

// With edge enabled a 254 neighbour lets the valid one extend (S4, edge case).
func TestStage2EdgeExtension(t *testing.T) {
	tile := uniformTile(ClassClearLC)
	for s := 0; s < BlockSamples; s++ {
		for l := 40; l <= 49; l++ {
			tile.Set(CameraDF, s, l, ClassMissing)
			tile.Set(CameraBF, s, l, ClassEdge)
		}
	}
	counts := tile.MissingCounts()

	// Disabled: the stripe stays missing.
	out, left := FillFromNeighbours(tile, counts, Stage2Options{})
	assertCell(t, out, CameraDF, 100, 45, ClassMissing)
	if left[CameraDF] != BlockSamples*10 {
		t.Fatalf("edge off: remaining DF = %d", left[CameraDF])
	}

	// Enabled: CF supplies the stripe.
	out, left = FillFromNeighbours(tile, counts, Stage2Options{Edge: true})
	assertCell(t, out, CameraDF, 100, 45, ClassClearLC)
	if left[CameraDF] != 0 {
		t.Fatalf("edge on: remaining DF = %d", left[CameraDF])
	}
}

// Cameras with fewer gaps are processed first, and a repaired camera serves
// as reference for its later-processed neighbours.
func TestStage2ProcessedReferenceReuse(t *testing.T) {
	tile := uniformTile(ClassClearLC)
	tile.Set(CameraDF, 5, 5, ClassMissing)
	tile.Set(CameraCF, 5, 5, ClassMissing)

	out, left := FillFromNeighbours(tile, tile.MissingCounts(), Stage2Options{Edge: true})

	// DF (camera 0) is processed before CF on the index tie-break. The edge
	// rule fills DF from BF while CF is missing; CF then sees the repaired
	// DF plane and fills by agreement.
	assertCell(t, out, CameraDF, 5, 5, ClassClearLC)
	assertCell(t, out, CameraCF, 5, 5, ClassClearLC)
	if left.Total() != 0 {
		t.Fatalf("remaining = %v", left)
	}
}

// Property 5: any pixel Stage 2 changes must be justified by its neighbour
// references.
func TestStage2OnlyTouchesGaps(t *testing.T) {
	tile := uniformTile(ClassCloudLC)
	tile.Set(CameraAN, 8, 8, ClassObscured)
	tile.Set(CameraAN, 9, 9, ClassEdge)
	tile.Set(CameraAN, 10, 10, ClassFill)

	out, _ := FillFromNeighbours(tile, tile.MissingCounts(), Stage2Options{Edge: true})
	assertCell(t, out, CameraAN, 8, 8, ClassObscured)
	assertCell(t, out, CameraAN, 9, 9, ClassEdge)
	assertCell(t, out, CameraAN, 10, 10, ClassFill)
}

// The aft-most camera borrows its two aft neighbours.
func TestStage2AftmostNeighbours(t *testing.T) {
	tile := uniformTile(ClassClearHC)
	tile.Set(CameraDA, 50, 50, ClassMissing)

	out, left := FillFromNeighbours(tile, tile.MissingCounts(), Stage2Options{})
	assertCell(t, out, CameraDA, 50, 50, ClassClearHC)
	if left.Total() != 0 {
		t.Fatalf("remaining = %v", left)
	}
}
