package ability

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want time.Duration
	}{
		{in: 0.5, want: 500 * time.Millisecond},
		{in: 0.1, want: 100 * time.Millisecond},
		{in: 1.0 / 60, want: 16666667 * time.Nanosecond},
		{in: 0, want: 0},
		{in: -1, want: 0},
		{in: math.NaN(), want: 0},
		{in: math.Inf(1), want: math.MaxInt64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Seconds(tt.in), "Seconds(%v)", tt.in)
	}
}

func TestSaturatingSub(t *testing.T) {
	assert.Equal(t, time.Duration(0), SaturatingSub(500*time.Millisecond, 700*time.Millisecond))
	assert.Equal(t, time.Duration(0), SaturatingSub(time.Second, time.Second))
	assert.Equal(t, 300*time.Millisecond, SaturatingSub(time.Second, 700*time.Millisecond))
}

func TestSaturatingAdd(t *testing.T) {
	assert.Equal(t, time.Duration(math.MaxInt64), saturatingAdd(math.MaxInt64-1, time.Second))
	assert.Equal(t, 2*time.Second, saturatingAdd(time.Second, time.Second))
}
