package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindsUnwrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{"malformed", &MalformedSeriesError{Symbol: "X", Index: 3, Reason: "duplicate timestamp"}, ErrMalformedSeries, "bar 3"},
		{"malformed whole series", &MalformedSeriesError{Symbol: "X", Index: -1, Reason: "series is empty"}, ErrMalformedSeries, "series is empty"},
		{"insufficient", NewInsufficientData("indicators", 2, 1), ErrInsufficientData, "needs 2"},
		{"degenerate", &DegenerateTargetError{Method: "fixed", Reason: "stop equals entry"}, ErrDegenerateTarget, "stop equals entry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("analyze: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			assert.Contains(t, wrapped.Error(), tt.contains)
		})
	}
}
