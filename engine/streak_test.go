package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeStreak(t *testing.T) {
	today := "2025-06-15"

	cases := []struct {
		name    string
		days    []string
		current int
		longest int
	}{
		{"empty history", nil, 0, 0},
		{"single check today", []string{"2025-06-15"}, 1, 1},
		{"today and yesterday only", []string{"2025-06-15", "2025-06-14"}, 2, 2},
		{
			// today unchecked, streak survives through yesterday
			"grace until the full day elapses",
			[]string{"2025-06-14", "2025-06-13", "2025-06-12"},
			3, 3,
		},
		{
			"gap before yesterday breaks current",
			[]string{"2025-06-15", "2025-06-14", "2025-06-12", "2025-06-11", "2025-06-10"},
			2, 3,
		},
		{
			"stale history only",
			[]string{"2025-06-10", "2025-06-09"},
			0, 2,
		},
		{
			"longest run is in the past",
			[]string{"2025-06-15", "2025-06-01", "2025-06-02", "2025-06-03", "2025-06-04", "2025-06-05"},
			1, 5,
		},
		{
			"duplicates and order do not matter",
			[]string{"2025-06-14", "2025-06-15", "2025-06-15", "2025-06-14"},
			2, 2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeStreak(tc.days, today)
			assert.Equal(t, tc.current, got.Current, "current")
			assert.Equal(t, tc.longest, got.Longest, "longest")
		})
	}
}

func TestComputeStreak_MonthBoundary(t *testing.T) {
	got := ComputeStreak([]string{"2025-05-31", "2025-06-01"}, "2025-06-01")
	assert.Equal(t, Streak{Current: 2, Longest: 2}, got)
}

func TestComputeStreak_YearBoundary(t *testing.T) {
	got := ComputeStreak([]string{"2024-12-31", "2025-01-01"}, "2025-01-01")
	assert.Equal(t, Streak{Current: 2, Longest: 2}, got)
}

func TestDistinctLocalDays(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Tokyo")
	events := []time.Time{
		time.Date(2025, 6, 14, 23, 0, 0, 0, time.UTC), // 06-15 in Tokyo
		time.Date(2025, 6, 15, 1, 0, 0, 0, time.UTC),  // 06-15 in Tokyo
		time.Date(2025, 6, 15, 16, 0, 0, 0, time.UTC), // 06-16 in Tokyo
	}
	days := DistinctLocalDays(events, loc)
	assert.ElementsMatch(t, []string{"2025-06-15", "2025-06-16"}, days)
}
