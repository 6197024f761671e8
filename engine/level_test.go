package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXPThresholdForLevel_Staircase(t *testing.T) {
	// The documented curve: increments grow by 50 per level.
	want := map[int]int{1: 0, 2: 100, 3: 250, 4: 450, 5: 700, 6: 1000}
	for level, xp := range want {
		assert.Equal(t, xp, XPThresholdForLevel(level), "level %d", level)
	}
	assert.Equal(t, 0, XPThresholdForLevel(0))
	assert.Equal(t, 0, XPThresholdForLevel(-3))
}

func TestLevelFromXP_Scenario(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1}, {99, 1}, {100, 2}, {249, 2}, {250, 3}, {449, 3}, {450, 4}, {699, 4}, {700, 5}, {1000, 6},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelFromXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestLevelFromXP_NonDecreasing(t *testing.T) {
	prev := 1
	for xp := 0; xp <= 20000; xp += 7 {
		level := LevelFromXP(xp)
		assert.GreaterOrEqual(t, level, prev, "xp=%d", xp)
		prev = level
	}
}

func TestLevelFromXP_RoundTripsThresholds(t *testing.T) {
	for level := 1; level <= MaxLevel; level++ {
		threshold := XPThresholdForLevel(level)
		assert.Equal(t, level, LevelFromXP(threshold), "threshold of level %d", level)
		if level > 1 {
			assert.Equal(t, level-1, LevelFromXP(threshold-1), "just below level %d", level)
		}
	}
}

func TestLevelFromXP_NegativeAndCap(t *testing.T) {
	assert.Equal(t, 1, LevelFromXP(-50))
	assert.Equal(t, MaxLevel, LevelFromXP(XPThresholdForLevel(MaxLevel)+1_000_000))
}

func TestProgressWithinLevel(t *testing.T) {
	p := ProgressWithinLevel(120)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 20, p.Into)
	assert.Equal(t, 150, p.Span) // 250 - 100

	p = ProgressWithinLevel(0)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0, p.Into)
	assert.Equal(t, 100, p.Span)

	p = ProgressWithinLevel(XPThresholdForLevel(MaxLevel) + 42)
	assert.Equal(t, MaxLevel, p.Level)
	assert.Equal(t, 0, p.Span, "no next level at the cap")
}
