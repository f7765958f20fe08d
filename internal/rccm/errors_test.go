package rccm

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := E(KindShapeMismatch, "rccm.LoadTile", "plane has %d cells", 12)
	if got := KindOf(err); got != KindShapeMismatch {
		t.Fatalf("KindOf = %v, want shape mismatch", got)
	}

	// The kind survives further wrapping.
	wrapped := fmt.Errorf("while loading: %w", err)
	if got := KindOf(wrapped); got != KindShapeMismatch {
		t.Fatalf("KindOf through wrap = %v, want shape mismatch", got)
	}

	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Fatalf("plain error kind = %v, want unknown", got)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(KindReaderFailure, "op", nil) != nil {
		t.Fatal("wrapping nil must stay nil")
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("disk gone")
	err := Wrap(KindSinkFailure, "store.SaveTile", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause should be reachable via errors.Is")
	}
	msg := err.Error()
	for _, want := range []string{"store.SaveTile", "sink_failure", "disk gone"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q lacks %q", msg, want)
		}
	}
}
