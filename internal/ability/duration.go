package ability

import (
	"math"
	"time"
)

// Seconds converts a floating point tick length to a Duration, rounded to the
// nearest nanosecond. Negative and NaN inputs yield zero.
func Seconds(s float64) time.Duration {
	if !(s > 0) {
		return 0
	}
	if s >= math.MaxInt64/float64(time.Second) {
		return math.MaxInt64
	}
	return time.Duration(math.Round(s * float64(time.Second)))
}

// SaturatingSub returns a-b, or zero when b exceeds a.
func SaturatingSub(a, b time.Duration) time.Duration {
	if b >= a {
		return 0
	}
	return a - b
}

// saturatingAdd returns a+b clamped to the Duration range.
func saturatingAdd(a, b time.Duration) time.Duration {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
