package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForProgress(t *testing.T) {
	tests := []struct {
		progress int
		want     string
	}{
		{0, StatusNotStarted},
		{1, StatusInProgress},
		{45, StatusInProgress},
		{99, StatusInProgress},
		{100, StatusCompleted},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForProgress(tt.progress), "progress %d", tt.progress)
	}
}

func TestStatusForProgressIsPure(t *testing.T) {
	// Same input, same output, no state involved.
	assert.Equal(t, StatusForProgress(45), StatusForProgress(45))
	assert.Equal(t, StatusForProgress(100), StatusForProgress(100))
}

func TestClampProgress(t *testing.T) {
	assert.Equal(t, 0, ClampProgress(-5))
	assert.Equal(t, 0, ClampProgress(0))
	assert.Equal(t, 57, ClampProgress(57))
	assert.Equal(t, 100, ClampProgress(100))
	assert.Equal(t, 100, ClampProgress(150))
}
