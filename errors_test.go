package deck

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseInitialize, "initialize"},
		{PhaseUpdate, "update"},
		{PhaseFinalize, "finalize"},
		{Phase(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestPreconditionError(t *testing.T) {
	err := &PreconditionError{Op: "SetLayers", Missing: "an activated viewport"}
	if !strings.Contains(err.Error(), "SetLayers") {
		t.Errorf("error message missing op: %q", err.Error())
	}

	var pe *PreconditionError
	wrapped := fmt.Errorf("frame failed: %w", err)
	if !errors.As(wrapped, &pe) {
		t.Error("errors.As should find PreconditionError through wrapping")
	}
}

func TestLayerErrorUnwrap(t *testing.T) {
	cause := errors.New("buffer allocation failed")
	err := &LayerError{LayerID: "points", Phase: PhaseInitialize, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should match the wrapped cause")
	}
	msg := err.Error()
	for _, want := range []string{"points", "initialize", "buffer allocation failed"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q missing %q", msg, want)
		}
	}
}
