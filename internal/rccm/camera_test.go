package rccm

import "testing"

func TestCameraNames(t *testing.T) {
	want := []string{"DF", "CF", "BF", "AF", "AN", "AA", "BA", "CA", "DA"}
	for i, name := range want {
		if got := Camera(i).String(); got != name {
			t.Errorf("camera %d = %q, want %q", i, got, name)
		}
		if got := CameraByName(name); got != Camera(i) {
			t.Errorf("CameraByName(%q) = %d, want %d", name, got, i)
		}
	}
	if CameraByName("XX") != -1 {
		t.Error("unknown designator should return -1")
	}
}

func TestNeighbours(t *testing.T) {
	cases := []struct {
		cam  Camera
		a, b Camera
	}{
		{CameraDF, CameraCF, CameraBF},
		{CameraCF, CameraDF, CameraBF},
		{CameraAN, CameraAF, CameraAA},
		{CameraCA, CameraBA, CameraDA},
		{CameraDA, CameraBA, CameraCA},
	}
	for _, c := range cases {
		a, b := c.cam.Neighbours()
		if a != c.a || b != c.b {
			t.Errorf("%s neighbours = %s,%s want %s,%s", c.cam, a, b, c.a, c.b)
		}
	}
}

func TestNeighboursInclinedFirst(t *testing.T) {
	// Fore cameras consult the more fore-inclined neighbour first, aft
	// cameras the more aft-inclined one.
	cases := []struct {
		cam           Camera
		first, second Camera
	}{
		{CameraDF, CameraCF, CameraBF},
		{CameraBF, CameraCF, CameraAF},
		{CameraAN, CameraAF, CameraAA},
		{CameraAA, CameraBA, CameraAN},
		{CameraDA, CameraCA, CameraBA},
	}
	for _, c := range cases {
		first, second := c.cam.NeighboursInclinedFirst()
		if first != c.first || second != c.second {
			t.Errorf("%s inclined-first = %s,%s want %s,%s", c.cam, first, second, c.first, c.second)
		}
	}
}
