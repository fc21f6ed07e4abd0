package main

import (
	"context"
	"fmt"
	"testing"

	werrors "github.com/matzehuels/wobble/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"interrupt", fmt.Errorf("render: %w", context.Canceled), 130},
		{"invalid config", werrors.New(werrors.ErrCodeInvalidConfig, "shape_count must be positive"), 2},
		{"render failure", werrors.New(werrors.ErrCodeRenderingFailure, "boom"), 1},
		{"plain error", fmt.Errorf("unknown flag"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
