package rccm

import (
	"errors"
	"testing"
)

type failingReader struct{ err error }

func (r failingReader) ReadPlane(int) ([]ClassCode, error) { return nil, r.err }

type shortReader struct{}

func (shortReader) ReadPlane(int) ([]ClassCode, error) {
	return make([]ClassCode, 100), nil
}

func TestLoadTile(t *testing.T) {
	src := uniformTile(ClassCloudLC)
	src.Set(CameraAN, 3, 4, ClassMissing)

	tile, counts, err := LoadTile(readersFor(src), 110)
	if err != nil {
		t.Fatalf("LoadTile: %v", err)
	}
	if !tile.Equal(src) {
		t.Fatal("loaded tile differs from source planes")
	}
	if counts[CameraAN] != 1 || counts.Total() != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestLoadTileReaderFailure(t *testing.T) {
	src := uniformTile(ClassCloudLC)
	readers := readersFor(src)
	cause := errors.New("decode blew up")
	readers[CameraCA] = failingReader{err: cause}

	_, _, err := LoadTile(readers, 110)
	if KindOf(err) != KindReaderFailure {
		t.Fatalf("kind = %v, want reader failure", KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause should be wrapped")
	}
}

func TestLoadTileShapeMismatch(t *testing.T) {
	readers := readersFor(uniformTile(ClassCloudLC))
	readers[CameraDF] = shortReader{}

	_, _, err := LoadTile(readers, 110)
	if KindOf(err) != KindShapeMismatch {
		t.Fatalf("kind = %v, want shape mismatch", KindOf(err))
	}
}

// Out-of-vocabulary values are preserved verbatim, never rewritten.
func TestLoadTilePreservesAnomalies(t *testing.T) {
	src := uniformTile(ClassClearHC)
	src.Set(CameraBA, 7, 7, ClassCode(99))

	tile, _, err := LoadTile(readersFor(src), 110)
	if err != nil {
		t.Fatalf("LoadTile: %v", err)
	}
	assertCell(t, tile, CameraBA, 7, 7, ClassCode(99))
}
