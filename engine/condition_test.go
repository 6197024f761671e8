package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_KnownConditions(t *testing.T) {
	agg := Aggregates{
		CurrentStreak: 7,
		LongestStreak: 12,
		TotalChecks:   150,
		PerfectDays:   20,
		WeekRates:     []float64{1.0, 0.9, 0.5, 1.0},
		PerfectMonths: 1,
		BalanceScore:  0.8,
		MorningRatio:  0.65,
		WeekendRatio:  0.3,
	}

	cases := []struct {
		name string
		cond Condition
		want bool
	}{
		{"streak met", Condition{Type: CondStreak, Value: 7}, true},
		{"streak not met", Condition{Type: CondStreak, Value: 8}, false},
		{"total checks met", Condition{Type: CondTotalChecks, Value: 100}, true},
		{"perfect days met", Condition{Type: CondPerfectDays, Value: 20}, true},
		{"perfect weeks at 0.9 threshold", Condition{Type: CondPerfectWeeks, Value: 3, Ratio: 0.9}, true},
		{"perfect weeks at 1.0 threshold", Condition{Type: CondPerfectWeeks, Value: 3, Ratio: 1.0}, false},
		{"perfect month", Condition{Type: CondPerfectMonth, Value: 1}, true},
		{"balance met", Condition{Type: CondBalance, Ratio: 0.75}, true},
		{"balance not met", Condition{Type: CondBalance, Ratio: 0.9}, false},
		{"morning ratio met", Condition{Type: CondTimeOfDay, Ratio: 0.6}, true},
		{"weekend ratio not met", Condition{Type: CondWeekendRatio, Ratio: 0.5}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.cond, agg)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_UnknownTypeIsInvalid(t *testing.T) {
	_, err := Evaluate(Condition{Type: "astrology"}, Aggregates{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidUnlockCondition)
}

func TestEvaluate_MalformedPerfectWeeks(t *testing.T) {
	_, err := Evaluate(Condition{Type: CondPerfectWeeks, Value: 2}, Aggregates{})
	assert.ErrorIs(t, err, ErrInvalidUnlockCondition, "missing ratio")

	_, err = Evaluate(Condition{Type: CondPerfectWeeks, Ratio: 0.9}, Aggregates{})
	assert.ErrorIs(t, err, ErrInvalidUnlockCondition, "missing value")
}

func TestEvaluate_ZeroValueConditionsNeverFire(t *testing.T) {
	// A catalog row with all-zero parameters must not unlock on a fresh user.
	for _, ct := range []ConditionType{CondStreak, CondTotalChecks, CondPerfectDays, CondPerfectMonth, CondBalance, CondTimeOfDay, CondWeekendRatio} {
		got, err := Evaluate(Condition{Type: ct}, Aggregates{})
		require.NoError(t, err, "type %s", ct)
		assert.False(t, got, "type %s", ct)
	}
}

func TestEvaluate_RatioConditionsNeedChecks(t *testing.T) {
	// Ratio predicates are meaningless on an empty log.
	agg := Aggregates{MorningRatio: 1.0, WeekendRatio: 1.0, TotalChecks: 0}
	got, err := Evaluate(Condition{Type: CondTimeOfDay, Ratio: 0.5}, agg)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = Evaluate(Condition{Type: CondWeekendRatio, Ratio: 0.5}, agg)
	require.NoError(t, err)
	assert.False(t, got)
}
