// Package parse reads and writes the block-stack container files the
// pipeline consumes: per-camera extracts of the standard cloud mask and of
// the companion radiance product. Native HDF decoding happens upstream of
// this tool; these files carry pre-extracted block planes in a compact
// little-endian layout so the repair core and the sweep stay free of HDF
// dependencies.
//
// Container layout:
//
//	offset  size  field
//	0       8     magic "MISRBLK1"
//	8       1     product (1 = cloud mask, 2 = radiance)
//	9       1     camera (0..8, native order)
//	10      2     path
//	12      4     orbit
//	16      2     first block
//	18      2     block count
//	20      ...   block payloads, consecutive
//
// A cloud mask block payload is one 512×128 plane of ClassCode bytes in
// sample-major order. A radiance block payload is four 512×128 planes of
// uint16 scaled DNs, one per spectral band.
package parse

import (
	"encoding/binary"
	"fmt"

	"github.com/banshee-data/rccm.repair/internal/fsutil"
	"github.com/banshee-data/rccm.repair/internal/rccm"
)

// Magic identifies a block-stack container.
const Magic = "MISRBLK1"

// Product discriminators.
const (
	ProductRCCM     = 1
	ProductRadiance = 2
)

// NumBands is the spectral band count of the radiance product.
const NumBands = 4

const headerSize = 20

// Radiance DN sentinels. DNs below DNFirstFill are measurements; the fill
// range encodes why a position carries none.
const (
	DNFirstFill uint16 = 16376
	DNObscured  uint16 = 16378
	DNEdge      uint16 = 16380
	DNFill      uint16 = 16383
)

const (
	rccmBlockSize     = rccm.PlaneCells
	radianceBlockSize = NumBands * rccm.PlaneCells * 2
)

// Header describes one container file.
type Header struct {
	Product    int
	Camera     rccm.Camera
	Path       int
	Orbit      int64
	FirstBlock int
	NumBlocks  int
}

// File is an opened container with its payload resident in memory.
type File struct {
	Header Header
	data   []byte // payloads only, header stripped
}

// Open reads and validates a container file.
func Open(fsys fsutil.FileSystem, name string) (*File, error) {
	raw, err := fsys.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if len(raw) < headerSize {
		return nil, fmt.Errorf("open %s: truncated header (%d bytes)", name, len(raw))
	}
	if string(raw[:8]) != Magic {
		return nil, fmt.Errorf("open %s: bad magic %q", name, raw[:8])
	}
	h := Header{
		Product:    int(raw[8]),
		Camera:     rccm.Camera(raw[9]),
		Path:       int(binary.LittleEndian.Uint16(raw[10:12])),
		Orbit:      int64(binary.LittleEndian.Uint32(raw[12:16])),
		FirstBlock: int(binary.LittleEndian.Uint16(raw[16:18])),
		NumBlocks:  int(binary.LittleEndian.Uint16(raw[18:20])),
	}
	if h.Product != ProductRCCM && h.Product != ProductRadiance {
		return nil, fmt.Errorf("open %s: unknown product %d", name, h.Product)
	}
	if h.Camera < 0 || h.Camera >= rccm.NumCameras {
		return nil, fmt.Errorf("open %s: camera %d out of range", name, h.Camera)
	}
	blockSize := rccmBlockSize
	if h.Product == ProductRadiance {
		blockSize = radianceBlockSize
	}
	want := h.NumBlocks * blockSize
	if got := len(raw) - headerSize; got != want {
		return nil, fmt.Errorf("open %s: payload is %d bytes, want %d for %d blocks", name, got, want, h.NumBlocks)
	}
	return &File{Header: h, data: raw[headerSize:]}, nil
}

// blockOffset returns the payload offset of the given block.
func (f *File) blockOffset(block, blockSize int) (int, error) {
	i := block - f.Header.FirstBlock
	if i < 0 || i >= f.Header.NumBlocks {
		return 0, fmt.Errorf("block %d outside file range %d..%d",
			block, f.Header.FirstBlock, f.Header.FirstBlock+f.Header.NumBlocks-1)
	}
	return i * blockSize, nil
}

// MaskReader adapts a cloud-mask container to the loader's CameraReader
// contract.
type MaskReader struct {
	file *File
}

// OpenMask opens a cloud-mask container.
func OpenMask(fsys fsutil.FileSystem, name string) (*MaskReader, error) {
	f, err := Open(fsys, name)
	if err != nil {
		return nil, err
	}
	if f.Header.Product != ProductRCCM {
		return nil, fmt.Errorf("open %s: product %d is not a cloud mask", name, f.Header.Product)
	}
	return &MaskReader{file: f}, nil
}

// Camera returns the camera this file carries.
func (r *MaskReader) Camera() rccm.Camera { return r.file.Header.Camera }

// ReadPlane returns the 512×128 ClassCode plane for the given block.
func (r *MaskReader) ReadPlane(block int) ([]rccm.ClassCode, error) {
	off, err := r.blockOffsetChecked(block)
	if err != nil {
		return nil, err
	}
	plane := make([]rccm.ClassCode, rccm.PlaneCells)
	for i := range plane {
		plane[i] = rccm.ClassCode(r.file.data[off+i])
	}
	return plane, nil
}

func (r *MaskReader) blockOffsetChecked(block int) (int, error) {
	return r.file.blockOffset(block, rccmBlockSize)
}

// RadianceReader exposes one camera's radiance DN planes.
type RadianceReader struct {
	file *File
}

// OpenRadiance opens a radiance container.
func OpenRadiance(fsys fsutil.FileSystem, name string) (*RadianceReader, error) {
	f, err := Open(fsys, name)
	if err != nil {
		return nil, err
	}
	if f.Header.Product != ProductRadiance {
		return nil, fmt.Errorf("open %s: product %d is not radiance", name, f.Header.Product)
	}
	return &RadianceReader{file: f}, nil
}

// Camera returns the camera this file carries.
func (r *RadianceReader) Camera() rccm.Camera { return r.file.Header.Camera }

// observability reduces the four band DNs at one position to the tri-state
// the flagger needs: present when any band measured, obscured when no band
// measured and at least one band reports terrain obscuration, structural
// absence otherwise.
func observability(dns [NumBands]uint16) rccm.Observability {
	obscured := false
	for _, dn := range dns {
		if dn < DNFirstFill {
			return rccm.RadiancePresent
		}
		if dn == DNObscured {
			obscured = true
		}
	}
	if obscured {
		return rccm.RadianceObscured
	}
	return rccm.RadianceEdge
}

// ReadObservability aggregates the camera's band planes for one block into
// per-pixel tri-states, written into the camera's plane of avail.
func (r *RadianceReader) ReadObservability(block int, avail *rccm.Availability) error {
	off, err := r.file.blockOffset(block, radianceBlockSize)
	if err != nil {
		return err
	}
	cam := r.file.Header.Camera
	plane := avail.Plane(cam)
	for i := 0; i < rccm.PlaneCells; i++ {
		var dns [NumBands]uint16
		for b := 0; b < NumBands; b++ {
			p := off + (b*rccm.PlaneCells+i)*2
			dns[b] = binary.LittleEndian.Uint16(r.file.data[p : p+2])
		}
		plane[i] = observability(dns)
	}
	return nil
}

// ReadAvailability opens the nine per-camera radiance containers (native
// camera order) and assembles the block's availability bitmap.
func ReadAvailability(fsys fsutil.FileSystem, names [rccm.NumCameras]string, block int) (*rccm.Availability, error) {
	avail := rccm.NewAvailability()
	for _, cam := range rccm.Cameras() {
		r, err := OpenRadiance(fsys, names[cam])
		if err != nil {
			return nil, err
		}
		if got := r.Camera(); got != cam {
			return nil, fmt.Errorf("radiance file %s carries camera %s, want %s", names[cam], got, cam)
		}
		if err := r.ReadObservability(block, avail); err != nil {
			return nil, fmt.Errorf("radiance camera %s: %w", cam, err)
		}
	}
	return avail, nil
}

// OpenMaskSet opens the nine per-camera cloud-mask containers in native
// camera order and returns them as loader handles.
func OpenMaskSet(fsys fsutil.FileSystem, names [rccm.NumCameras]string) ([rccm.NumCameras]rccm.CameraReader, error) {
	var out [rccm.NumCameras]rccm.CameraReader
	for _, cam := range rccm.Cameras() {
		r, err := OpenMask(fsys, names[cam])
		if err != nil {
			return out, err
		}
		if got := r.Camera(); got != cam {
			return out, fmt.Errorf("mask file %s carries camera %s, want %s", names[cam], got, cam)
		}
		out[cam] = r
	}
	return out, nil
}
