// Package store persists stage tiles as opaque blobs under the standard
// output layout:
//
//	{root}/P{path}-O{orbit}-B{block}/GM/RCCM[_{test_id}][_edge]/
//	    rccm2_AN_20120305_20260801.sav
//
// Filenames encode stage, camera, acquisition date and generation date. Each
// camera plane is written separately so downstream tooling can fetch single
// cameras without decoding the full tile.
package store

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/banshee-data/rccm.repair/internal/db"
	"github.com/banshee-data/rccm.repair/internal/fsutil"
	"github.com/banshee-data/rccm.repair/internal/rccm"
	"github.com/banshee-data/rccm.repair/internal/timeutil"
)

// savedPlane is the serialised form of one camera plane.
type savedPlane struct {
	Stage  string
	Camera string
	Plane  []rccm.ClassCode
}

// serializePlane compresses one plane using gob encoding and gzip compression.
func serializePlane(p savedPlane) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(p); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializePlane decompresses and decodes a plane blob.
func deserializePlane(blob []byte) (savedPlane, error) {
	var p savedPlane
	if len(blob) == 0 {
		return p, fmt.Errorf("empty plane blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return p, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()
	if err := gob.NewDecoder(gz).Decode(&p); err != nil {
		return p, fmt.Errorf("failed to decode plane: %w", err)
	}
	return p, nil
}

// TileStore writes stage tiles for one (path, orbit, block). It implements
// rccm.TileSink. DB is optional; when present every blob gets an index row.
type TileStore struct {
	FS    fsutil.FileSystem
	Root  string
	Clock timeutil.Clock
	DB    *db.DB

	Path     int
	Orbit    int64
	Block    int
	Acquired time.Time
	TestID   string
	Edge     bool
}

// Dir returns the resolved output directory for this store's run.
func (s *TileStore) Dir() string {
	sub := "RCCM"
	if s.TestID != "" {
		sub += "_" + s.TestID
	}
	if s.Edge {
		sub += "_edge"
	}
	return fmt.Sprintf("%s/P%03d-O%06d-B%03d/GM/%s", s.Root, s.Path, s.Orbit, s.Block, sub)
}

// SaveTile persists every camera plane of a stage tile.
func (s *TileStore) SaveTile(stage string, tile *rccm.Tile) error {
	dir := s.Dir()
	if err := s.FS.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	now := s.Clock.Now()
	for _, cam := range rccm.Cameras() {
		blob, err := serializePlane(savedPlane{
			Stage:  stage,
			Camera: cam.String(),
			Plane:  tile.Plane(cam),
		})
		if err != nil {
			return fmt.Errorf("store: serialize %s %s: %w", stage, cam, err)
		}
		name := fmt.Sprintf("%s/%s_%s_%s_%s.sav",
			dir, stage, cam, s.Acquired.UTC().Format("20060102"), now.UTC().Format("20060102"))
		if err := s.FS.WriteFile(name, blob, 0644); err != nil {
			return fmt.Errorf("store: write %s: %w", name, err)
		}
		if s.DB != nil {
			err := s.DB.InsertTileSave(&db.TileSave{
				Stage:    stage,
				Camera:   cam.String(),
				Path:     s.Path,
				Orbit:    s.Orbit,
				Block:    s.Block,
				Acquired: s.Acquired,
				TestID:   s.TestID,
				Edge:     s.Edge,
				File:     name,
				Created:  now,
			})
			if err != nil {
				return fmt.Errorf("store: index %s: %w", name, err)
			}
		}
	}
	return nil
}

// LoadPlane reads one persisted blob back. Used by tooling and tests.
func LoadPlane(fsys fsutil.FileSystem, name string) (string, rccm.Camera, []rccm.ClassCode, error) {
	blob, err := fsys.ReadFile(name)
	if err != nil {
		return "", -1, nil, err
	}
	p, err := deserializePlane(blob)
	if err != nil {
		return "", -1, nil, fmt.Errorf("load %s: %w", name, err)
	}
	cam := rccm.CameraByName(p.Camera)
	if cam < 0 {
		return "", -1, nil, fmt.Errorf("load %s: unknown camera %q", name, p.Camera)
	}
	if len(p.Plane) != rccm.PlaneCells {
		return "", -1, nil, fmt.Errorf("load %s: plane has %d cells, want %d", name, len(p.Plane), rccm.PlaneCells)
	}
	return p.Stage, cam, p.Plane, nil
}
