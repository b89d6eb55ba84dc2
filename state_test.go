package viewload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Counts(t *testing.T) {
	p := NewProgress()
	assert.Equal(t, int64(0), p.CompletedUnitCount())
	assert.Equal(t, int64(0), p.TotalUnitCount())
	assert.Equal(t, 0.0, p.Fraction())

	p.set(512, 2048)
	assert.Equal(t, int64(512), p.CompletedUnitCount())
	assert.Equal(t, int64(2048), p.TotalUnitCount())
	assert.Equal(t, 0.25, p.Fraction())

	p.reset()
	assert.Equal(t, int64(0), p.CompletedUnitCount())
	assert.Equal(t, 0.0, p.Fraction())

	p.markUnknownComplete()
	assert.Equal(t, UnknownUnitCount, p.CompletedUnitCount())
	assert.Equal(t, UnknownUnitCount, p.TotalUnitCount())
	assert.Equal(t, 1.0, p.Fraction())
}

func TestClampFraction(t *testing.T) {
	tests := []struct {
		name      string
		completed int64
		total     int64
		want      float64
	}{
		{name: "zero total", completed: 10, total: 0, want: 0},
		{name: "negative total", completed: 10, total: -5, want: 0},
		{name: "halfway", completed: 50, total: 100, want: 0.5},
		{name: "complete", completed: 100, total: 100, want: 1},
		{name: "overshoot clamps high", completed: 150, total: 100, want: 1},
		{name: "negative completed clamps low", completed: -10, total: 100, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampFraction(tt.completed, tt.total))
		})
	}
}

func TestCacheTier_String(t *testing.T) {
	assert.Equal(t, "none", CacheTierNone.String())
	assert.Equal(t, "memory", CacheTierMemory.String())
	assert.Equal(t, "disk", CacheTierDisk.String())
	assert.Equal(t, "none", CacheTier(42).String())
}
