package engine

import (
	"math"
	"time"
)

// Grant is a time-bounded bonus multiplier. A grant is active for instants in
// [ValidFrom, ValidUntil).
type Grant struct {
	Kind       string    `json:"kind"`
	Value      float64   `json:"value"`
	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until"`
}

// Active reports whether the grant covers the instant.
func (g Grant) Active(now time.Time) bool {
	return !now.Before(g.ValidFrom) && now.Before(g.ValidUntil)
}

// CombinedMultiplier stacks active grants additively on the 1.0 baseline:
// 1 + Σ(value−1), never compounding. weekendValue > 1 adds the on-the-fly
// weekend bonus the same way when weekend is true. cap bounds the combined
// value when > 1; cap <= 1 means uncapped (the default policy).
func CombinedMultiplier(grants []Grant, now time.Time, weekend bool, weekendValue float64, cap float64) float64 {
	total := 1.0
	for _, g := range grants {
		if g.Active(now) && g.Value > 1 {
			total += g.Value - 1
		}
	}
	if weekend && weekendValue > 1 {
		total += weekendValue - 1
	}
	if cap > 1 && total > cap {
		total = cap
	}
	return total
}

// IsWeekend reports whether the instant falls on Saturday or Sunday in loc.
func IsWeekend(now time.Time, loc *time.Location) bool {
	wd := now.In(loc).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ApplyMultiplier scales a base XP amount, rounding half away from zero.
func ApplyMultiplier(base int, multiplier float64) int {
	if base <= 0 {
		return 0
	}
	if multiplier < 1 {
		multiplier = 1
	}
	return int(math.Round(float64(base) * multiplier))
}
