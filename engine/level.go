package engine

// XP curve: the XP needed to go from level L to L+1 is
// baseIncrement + incrementStep*(L-1), so cumulative thresholds follow a
// quadratic staircase: 0, 100, 250, 450, 700, 1000, ...
const (
	baseIncrement = 100
	incrementStep = 50

	// MaxLevel caps the curve; LevelFromXP never returns more.
	MaxLevel = 100
)

// XPThresholdForLevel returns the minimum cumulative XP to be at level.
// Level 1 starts at 0. Closed form of the increment sum.
func XPThresholdForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return baseIncrement*n + incrementStep*n*(n-1)/2
}

// LevelFromXP maps cumulative XP onto a level. Monotonic non-decreasing, and
// LevelFromXP(XPThresholdForLevel(L)) == L for every valid L.
func LevelFromXP(xp int) int {
	if xp < 0 {
		return 1
	}
	level := 1
	for level < MaxLevel && xp >= XPThresholdForLevel(level+1) {
		level++
	}
	return level
}

// LevelProgress describes position within the current level for progress-bar
// consumers: Into is XP earned past the current threshold, Span the XP between
// the current and next thresholds (0 at MaxLevel).
type LevelProgress struct {
	Level int `json:"level"`
	Into  int `json:"into"`
	Span  int `json:"span"`
}

// ProgressWithinLevel returns the intra-level position for a cumulative XP.
func ProgressWithinLevel(xp int) LevelProgress {
	if xp < 0 {
		xp = 0
	}
	level := LevelFromXP(xp)
	into := xp - XPThresholdForLevel(level)
	span := 0
	if level < MaxLevel {
		span = XPThresholdForLevel(level+1) - XPThresholdForLevel(level)
	}
	return LevelProgress{Level: level, Into: into, Span: span}
}
