// Package util collects the small helpers shared across packages:
// tick/duration conversion, a UTC timestamp formatter, a rainbow-color
// cycler, an ANSI color wrapper for startup banners, and a generic Clamp.
package util

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/constraints"
)

// TicksToDuration converts a tick count at the given rate (ticks per
// second) into a wall-clock duration.
func TicksToDuration(ticks int64, hz float64) time.Duration {
	return time.Duration(float64(ticks) * float64(time.Second) / hz)
}

// DurationToTicks converts a wall-clock duration into the number of
// ticks it spans at the given rate (ticks per second), rounding down.
func DurationToTicks(d time.Duration, hz float64) int64 {
	return int64(d.Seconds() * hz)
}

// UTC formats now in the same "YYYY-MM-DDTHH:MM:SS" shape every log line
// in this stack is stamped with.
func UTC(now time.Time) string {
	return now.UTC().Format("2006-01-02T15:04:05")
}

// Rainbow returns the RGB triple step ticks into a continuous hue cycle.
// period controls how many steps a full cycle takes; a larger period
// produces a slower color shift.
func Rainbow(step int, period int) (r, g, b uint8) {
	if period <= 0 {
		period = 1
	}
	hue := float64(step%period) / float64(period)
	return hsvToRGB(hue)
}

// hsvToRGB converts a hue in [0,1) at full saturation and value into an
// 8-bit RGB triple.
func hsvToRGB(hue float64) (r, g, b uint8) {
	h := hue * 6
	x := 1 - math.Abs(math.Mod(h, 2)-1)

	var rf, gf, bf float64
	switch {
	case h < 1:
		rf, gf, bf = 1, x, 0
	case h < 2:
		rf, gf, bf = x, 1, 0
	case h < 3:
		rf, gf, bf = 0, 1, x
	case h < 4:
		rf, gf, bf = 0, x, 1
	case h < 5:
		rf, gf, bf = x, 0, 1
	default:
		rf, gf, bf = 1, 0, x
	}
	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

// Clamp restricts v to the inclusive range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ANSI wraps text in a 24-bit ANSI foreground color escape sequence.
func ANSI(r, g, b uint8, text string) string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", r, g, b, text)
}
