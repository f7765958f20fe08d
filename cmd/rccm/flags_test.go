package main

import (
	"testing"

	"github.com/banshee-data/rccm.repair/internal/rccm"
)

// TestFlagDefaults verifies the repair flags exist with their documented
// defaults.
func TestFlagDefaults(t *testing.T) {
	if *sweepMode != false {
		t.Errorf("expected sweep default false, got %v", *sweepMode)
	}
	if *edgeFlag != false {
		t.Errorf("expected edge default false, got %v", *edgeFlag)
	}
	if *orbitFlag != 0 {
		t.Errorf("expected orbit default 0, got %d", *orbitFlag)
	}
	if *testIDFlag != "" {
		t.Errorf("expected empty test id, got %q", *testIDFlag)
	}
	if *dbPathFlag != "" {
		t.Errorf("expected empty db path, got %q", *dbPathFlag)
	}
}

func TestParseCSVIntSlice(t *testing.T) {
	got, err := parseCSVIntSlice("50, -1, 0")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 50 || got[1] != -1 || got[2] != 0 {
		t.Fatalf("parsed %v", got)
	}

	if out, err := parseCSVIntSlice(""); err != nil || out != nil {
		t.Fatalf("empty input: %v %v", out, err)
	}

	if _, err := parseCSVIntSlice("1,two,3"); err == nil {
		t.Fatal("non-numeric entry accepted")
	}
}

// Each error kind maps onto its documented exit code.
func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		kind rccm.Kind
		code int
	}{
		{rccm.KindInvalidArgument, exitInvalidArgument},
		{rccm.KindMissing, exitInputDiscovery},
		{rccm.KindIncomplete, exitInputDiscovery},
		{rccm.KindAmbiguous, exitInputDiscovery},
		{rccm.KindReaderFailure, exitReader},
		{rccm.KindShapeMismatch, exitReader},
		{rccm.KindSinkFailure, exitSink},
		{rccm.KindEmptyIntersection, exitEmptyIntersection},
		{rccm.KindUnknown, exitInternal},
	}
	for _, c := range cases {
		err := rccm.E(c.kind, "test", "boom")
		if got := exitCodeFor(err); got != c.code {
			t.Errorf("kind %v: exit code %d, want %d", c.kind, got, c.code)
		}
	}
}
