package parse

import (
	"strings"
	"testing"

	"github.com/banshee-data/rccm.repair/internal/fsutil"
	"github.com/banshee-data/rccm.repair/internal/rccm"
	"github.com/banshee-data/rccm.repair/internal/testutil"
)

func maskPlane(v rccm.ClassCode) []rccm.ClassCode {
	plane := make([]rccm.ClassCode, rccm.PlaneCells)
	for i := range plane {
		plane[i] = v
	}
	return plane
}

func dnPlane(dn uint16) []uint16 {
	plane := make([]uint16, rccm.PlaneCells)
	for i := range plane {
		plane[i] = dn
	}
	return plane
}

func TestMaskRoundTrip(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	plane := maskPlane(rccm.ClassCloudLC)
	plane[42] = rccm.ClassObscured

	h := Header{Camera: rccm.CameraAN, Path: 168, Orbit: 60000, FirstBlock: 110}
	err := WriteMask(fs, "mask.dat", h, [][]rccm.ClassCode{plane})
	testutil.AssertNoError(t, err)

	r, err := OpenMask(fs, "mask.dat")
	testutil.AssertNoError(t, err)
	if r.Camera() != rccm.CameraAN {
		t.Fatalf("camera = %v", r.Camera())
	}

	got, err := r.ReadPlane(110)
	testutil.AssertNoError(t, err)
	if got[42] != rccm.ClassObscured || got[0] != rccm.ClassCloudLC {
		t.Fatalf("round trip corrupted the plane: %v %v", got[42], got[0])
	}

	// Blocks outside the stack error.
	_, err = r.ReadPlane(111)
	testutil.AssertError(t, err)
}

func TestOpenRejectsCorruptFiles(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()

	fs.WriteFile("short.dat", []byte("MIS"), 0644)
	_, err := Open(fs, "short.dat")
	testutil.AssertError(t, err)

	fs.WriteFile("magic.dat", append([]byte("NOTMAGIC"), make([]byte, 12)...), 0644)
	_, err = Open(fs, "magic.dat")
	if err == nil || !strings.Contains(err.Error(), "bad magic") {
		t.Fatalf("want bad magic error, got %v", err)
	}

	// Header promises one mask block but carries no payload.
	hdr := append([]byte("MISRBLK1"), byte(ProductRCCM), 0)
	hdr = append(hdr, 168%256, 168/256) // path
	hdr = append(hdr, 0x60, 0xEA, 0, 0) // orbit 60000
	hdr = append(hdr, 110, 0, 1, 0)     // first block, count
	fs.WriteFile("trunc.dat", hdr, 0644)
	_, err = Open(fs, "trunc.dat")
	if err == nil || !strings.Contains(err.Error(), "payload") {
		t.Fatalf("want payload error, got %v", err)
	}
}

func TestOpenMaskRejectsRadiance(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	var bands [NumBands][]uint16
	for b := range bands {
		bands[b] = dnPlane(1000)
	}
	h := Header{Camera: rccm.CameraDF, Path: 168, Orbit: 60000, FirstBlock: 110}
	err := WriteRadiance(fs, "rad.dat", h, [][NumBands][]uint16{bands})
	testutil.AssertNoError(t, err)

	_, err = OpenMask(fs, "rad.dat")
	testutil.AssertError(t, err)
	_, err = OpenRadiance(fs, "rad.dat")
	testutil.AssertNoError(t, err)
}

func TestObservabilityAggregation(t *testing.T) {
	cases := []struct {
		name string
		dns  [NumBands]uint16
		want rccm.Observability
	}{
		{"all measured", [NumBands]uint16{100, 200, 300, 400}, rccm.RadiancePresent},
		{"one band is enough", [NumBands]uint16{DNEdge, DNEdge, 5000, DNEdge}, rccm.RadiancePresent},
		{"all edge", [NumBands]uint16{DNEdge, DNEdge, DNEdge, DNEdge}, rccm.RadianceEdge},
		{"all fill", [NumBands]uint16{DNFill, DNFill, DNFill, DNFill}, rccm.RadianceEdge},
		{"obscured wins over edge", [NumBands]uint16{DNEdge, DNObscured, DNEdge, DNFill}, rccm.RadianceObscured},
	}
	for _, c := range cases {
		if got := observability(c.dns); got != c.want {
			t.Errorf("%s: observability = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestReadAvailability(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	var names [rccm.NumCameras]string
	for _, cam := range rccm.Cameras() {
		var bands [NumBands][]uint16
		for b := range bands {
			bands[b] = dnPlane(2000)
		}
		// One obscured and one edge position in band 0, echoed by the other
		// bands so no band carries a measurement there.
		for b := range bands {
			bands[b][7] = DNObscured
			bands[b][8] = DNEdge
		}
		names[cam] = "rad_" + cam.String() + ".dat"
		h := Header{Camera: cam, Path: 168, Orbit: 60000, FirstBlock: 110}
		err := WriteRadiance(fs, names[cam], h, [][NumBands][]uint16{bands})
		testutil.AssertNoError(t, err)
	}

	avail, err := ReadAvailability(fs, names, 110)
	testutil.AssertNoError(t, err)
	for _, cam := range rccm.Cameras() {
		plane := avail.Plane(cam)
		if plane[0] != rccm.RadiancePresent {
			t.Fatalf("%s[0] = %v", cam, plane[0])
		}
		if plane[7] != rccm.RadianceObscured {
			t.Fatalf("%s[7] = %v", cam, plane[7])
		}
		if plane[8] != rccm.RadianceEdge {
			t.Fatalf("%s[8] = %v", cam, plane[8])
		}
	}
}

func TestOpenMaskSetChecksCameraOrder(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	var names [rccm.NumCameras]string
	for _, cam := range rccm.Cameras() {
		names[cam] = "mask_" + cam.String() + ".dat"
		h := Header{Camera: cam, Path: 168, Orbit: 60000, FirstBlock: 110}
		err := WriteMask(fs, names[cam], h, [][]rccm.ClassCode{maskPlane(rccm.ClassClearHC)})
		testutil.AssertNoError(t, err)
	}

	readers, err := OpenMaskSet(fs, names)
	testutil.AssertNoError(t, err)
	plane, err := readers[rccm.CameraDA].ReadPlane(110)
	testutil.AssertNoError(t, err)
	if plane[0] != rccm.ClassClearHC {
		t.Fatalf("plane[0] = %v", plane[0])
	}

	// Swapping two files breaks the native-order contract.
	names[rccm.CameraDF], names[rccm.CameraCF] = names[rccm.CameraCF], names[rccm.CameraDF]
	_, err = OpenMaskSet(fs, names)
	testutil.AssertError(t, err)
}
