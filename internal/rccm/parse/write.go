package parse

import (
	"encoding/binary"
	"fmt"

	"github.com/banshee-data/rccm.repair/internal/fsutil"
	"github.com/banshee-data/rccm.repair/internal/rccm"
)

// WriteMask writes a cloud-mask container holding the given block planes,
// consecutive from h.FirstBlock. Used by fixtures and extraction tooling.
func WriteMask(fsys fsutil.FileSystem, name string, h Header, planes [][]rccm.ClassCode) error {
	h.Product = ProductRCCM
	h.NumBlocks = len(planes)
	buf := encodeHeader(h)
	for i, plane := range planes {
		if len(plane) != rccm.PlaneCells {
			return fmt.Errorf("write %s: block %d has %d cells, want %d", name, i, len(plane), rccm.PlaneCells)
		}
		for _, v := range plane {
			buf = append(buf, byte(v))
		}
	}
	return fsys.WriteFile(name, buf, 0644)
}

// WriteRadiance writes a radiance container. Each block carries NumBands DN
// planes of PlaneCells values.
func WriteRadiance(fsys fsutil.FileSystem, name string, h Header, blocks [][NumBands][]uint16) error {
	h.Product = ProductRadiance
	h.NumBlocks = len(blocks)
	buf := encodeHeader(h)
	for i, bands := range blocks {
		for b := 0; b < NumBands; b++ {
			if len(bands[b]) != rccm.PlaneCells {
				return fmt.Errorf("write %s: block %d band %d has %d cells, want %d",
					name, i, b, len(bands[b]), rccm.PlaneCells)
			}
			for _, dn := range bands[b] {
				buf = binary.LittleEndian.AppendUint16(buf, dn)
			}
		}
	}
	return fsys.WriteFile(name, buf, 0644)
}

func encodeHeader(h Header) []byte {
	buf := make([]byte, 0, headerSize)
	buf = append(buf, Magic...)
	buf = append(buf, byte(h.Product), byte(h.Camera))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(h.Path))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.Orbit))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(h.FirstBlock))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(h.NumBlocks))
	return buf
}
