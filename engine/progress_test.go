package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mid-week reference instant: Wednesday 2025-06-11 15:00 UTC
var wednesday = time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)

func TestGoalProgress_Daily(t *testing.T) {
	policy := GoalPolicy{Frequency: FreqDaily}

	p, err := GoalProgress(policy, nil, wednesday, "UTC", time.Monday)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Achieved)
	require.NotNil(t, p.Target)
	assert.Equal(t, 1, *p.Target)
	assert.False(t, p.Complete)

	events := []time.Time{
		time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC), // yesterday, ignored
	}
	p, err = GoalProgress(policy, events, wednesday, "UTC", time.Monday)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Achieved)
	assert.True(t, p.Complete)
	assert.Equal(t, "2025-06-11", p.PeriodLabel)
}

func TestGoalProgress_DailyRespectsTimezone(t *testing.T) {
	// 23:00 UTC Tuesday is already Wednesday in Tokyo.
	policy := GoalPolicy{Frequency: FreqDaily}
	events := []time.Time{time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC)}
	nowTokyo := time.Date(2025, 6, 11, 2, 0, 0, 0, time.UTC) // Wed 11:00 JST

	p, err := GoalProgress(policy, events, nowTokyo, "Asia/Tokyo", time.Monday)
	require.NoError(t, err)
	assert.True(t, p.Complete, "the 23:00 UTC check belongs to Wednesday in Tokyo")

	p, err = GoalProgress(policy, events, nowTokyo, "UTC", time.Monday)
	require.NoError(t, err)
	assert.False(t, p.Complete, "same instant is still Tuesday in UTC")
}

func TestGoalProgress_WeeklyCountScenario(t *testing.T) {
	policy := GoalPolicy{Frequency: FreqWeeklyCount, TargetCount: 3}
	events := []time.Time{
		time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
	}

	p, err := GoalProgress(policy, events, wednesday, "UTC", time.Monday)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Achieved)
	assert.Equal(t, 3, *p.Target)
	assert.False(t, p.Complete)

	events = append(events, time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC))
	p, err = GoalProgress(policy, events, wednesday, "UTC", time.Monday)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Achieved)
	assert.True(t, p.Complete)
}

func TestGoalProgress_WeeklyCountCountsOccurrencesNotDays(t *testing.T) {
	policy := GoalPolicy{Frequency: FreqWeeklyCount, TargetCount: 3}
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	events := []time.Time{day.Add(8 * time.Hour), day.Add(12 * time.Hour), day.Add(18 * time.Hour)}

	p, err := GoalProgress(policy, events, wednesday, "UTC", time.Monday)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Achieved)
	assert.True(t, p.Complete, "three same-day occurrences satisfy a count target")
}

func TestGoalProgress_WeeklyByWeekdaySet(t *testing.T) {
	// Monday + Wednesday + Friday
	mask := 1<<uint(time.Monday) | 1<<uint(time.Wednesday) | 1<<uint(time.Friday)
	policy := GoalPolicy{Frequency: FreqWeeklyDays, WeekdayMask: mask}

	events := []time.Time{
		time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC),  // Monday — qualifies
		time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), // Tuesday — not in set
		time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC), // Wednesday — qualifies
		time.Date(2025, 6, 11, 20, 0, 0, 0, time.UTC), // second Wednesday check, same day
	}
	p, err := GoalProgress(policy, events, wednesday, "UTC", time.Monday)
	require.NoError(t, err)
	assert.Equal(t, 3, *p.Target)
	assert.Equal(t, 2, p.Achieved, "distinct qualifying days, Tuesday excluded")
	assert.False(t, p.Complete)
}

func TestGoalProgress_MonthlyCount(t *testing.T) {
	policy := GoalPolicy{Frequency: FreqMonthlyCount, TargetCount: 2}
	events := []time.Time{
		time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC), // previous month
	}
	p, err := GoalProgress(policy, events, wednesday, "UTC", time.Monday)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Achieved)
	assert.True(t, p.Complete)
	assert.Equal(t, "2025-06", p.PeriodLabel)
}

func TestGoalProgress_Untracked(t *testing.T) {
	policy := GoalPolicy{Frequency: FreqUntracked}
	events := []time.Time{wednesday}

	p, err := GoalProgress(policy, events, wednesday, "UTC", time.Monday)
	require.NoError(t, err)
	assert.Nil(t, p.Target, "untracked goals carry no target")
	assert.Equal(t, 0, p.Achieved)
	assert.False(t, p.Complete)
}

func TestGoalProgress_InvalidTimezone(t *testing.T) {
	_, err := GoalProgress(GoalPolicy{Frequency: FreqDaily}, nil, wednesday, "Nope/Nope", time.Monday)
	assert.ErrorIs(t, err, ErrInvalidTimezone)
}
