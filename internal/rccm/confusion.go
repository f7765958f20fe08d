package rccm

// ConfusionMatrix tabulates, for one camera, how an artificially blanked
// region was reconstructed: rows index the original class 0..4, columns the
// reconstructed class 0..4. Only pixels reconstructed to a valid class are
// recorded, so the sum of all cells equals the number of blanked pixels the
// pipeline repaired. Original values outside 0..4 (unobservable codes) cannot
// be indexed and are skipped.
type ConfusionMatrix [5][5]int

// Add records one (original, reconstructed) pair, skipping pairs the matrix
// cannot represent.
func (m *ConfusionMatrix) Add(orig, recon ClassCode) {
	if orig > ClassClearHC || !recon.Valid() {
		return
	}
	m[orig][recon]++
}

// Total returns the sum of all cells.
func (m *ConfusionMatrix) Total() int {
	sum := 0
	for _, row := range m {
		for _, n := range row {
			sum += n
		}
	}
	return sum
}

// RowSum returns the count of recorded pixels whose original class was orig.
func (m *ConfusionMatrix) RowSum(orig ClassCode) int {
	if orig > ClassClearHC {
		return 0
	}
	sum := 0
	for _, n := range m[orig] {
		sum += n
	}
	return sum
}

// Diagonal returns the count of pixels reconstructed to their original class.
func (m *ConfusionMatrix) Diagonal() int {
	sum := 0
	for i := 1; i < 5; i++ {
		sum += m[i][i]
	}
	return sum
}

// LineRange is an inclusive per-camera line span [First, Last] used by the
// evaluation harness. A range with First < 0, Last < 0 or Last < First is
// empty and skips the camera.
type LineRange struct {
	First int
	Last  int
}

// Empty reports whether the range selects no lines.
func (r LineRange) Empty() bool {
	return r.First < 0 || r.Last < 0 || r.Last < r.First ||
		r.First >= BlockLines
}

// clamp returns the range intersected with the block's line extent.
func (r LineRange) clamp() LineRange {
	out := r
	if out.First < 0 {
		out.First = 0
	}
	if out.Last >= BlockLines {
		out.Last = BlockLines - 1
	}
	return out
}

// CompareTiles populates one confusion matrix per camera from the original
// and reconstructed tiles, restricted to the per-camera blanked line ranges.
func CompareTiles(orig, recon *Tile, regions [NumCameras]LineRange) [NumCameras]ConfusionMatrix {
	var out [NumCameras]ConfusionMatrix
	for _, cam := range Cameras() {
		r := regions[cam]
		if r.Empty() {
			continue
		}
		r = r.clamp()
		for s := 0; s < BlockSamples; s++ {
			for l := r.First; l <= r.Last; l++ {
				out[cam].Add(orig.At(cam, s, l), recon.At(cam, s, l))
			}
		}
	}
	return out
}
