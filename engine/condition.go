package engine

import "fmt"

// ConditionType discriminates the closed set of unlock condition variants.
type ConditionType string

const (
	// CondStreak: current streak length >= Value.
	CondStreak ConditionType = "streak"
	// CondTotalChecks: cumulative check count >= Value.
	CondTotalChecks ConditionType = "total_checks"
	// CondPerfectDays: number of perfect days >= Value.
	CondPerfectDays ConditionType = "perfect_days"
	// CondPerfectWeeks: number of recent weeks with completion rate >= Ratio
	// is at least Value.
	CondPerfectWeeks ConditionType = "perfect_weeks"
	// CondPerfectMonth: number of fully completed months >= Value.
	CondPerfectMonth ConditionType = "perfect_month"
	// CondBalance: cross-goal balance score >= Ratio.
	CondBalance ConditionType = "balance"
	// CondTimeOfDay: share of checks in the morning block >= Ratio.
	CondTimeOfDay ConditionType = "time_of_day"
	// CondWeekendRatio: share of checks on weekends >= Ratio.
	CondWeekendRatio ConditionType = "weekend_ratio"
)

// Aggregates is the snapshot of derived user state fed to condition
// predicates. Service code assembles it from the check-event log; the
// evaluator never reads storage itself.
type Aggregates struct {
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	TotalChecks   int       `json:"total_checks"`
	PerfectDays   int       `json:"perfect_days"`
	WeekRates     []float64 `json:"week_rates"`
	PerfectMonths int       `json:"perfect_months"`
	BalanceScore  float64   `json:"balance_score"`
	MorningRatio  float64   `json:"morning_ratio"`
	WeekendRatio  float64   `json:"weekend_ratio"`
	Level         int       `json:"level"`
}

// Condition is the tagged union stored in the achievement catalog.
type Condition struct {
	Type  ConditionType `json:"type"`
	Value int           `json:"value"`
	Ratio float64       `json:"ratio"`
}

// Evaluate dispatches the condition against the aggregates. The switch is
// exhaustive over the known variants; anything else is an
// ErrInvalidUnlockCondition so malformed catalog entries can be skipped
// without failing the whole evaluation batch.
func Evaluate(c Condition, a Aggregates) (bool, error) {
	switch c.Type {
	case CondStreak:
		return c.Value > 0 && a.CurrentStreak >= c.Value, nil
	case CondTotalChecks:
		return c.Value > 0 && a.TotalChecks >= c.Value, nil
	case CondPerfectDays:
		return c.Value > 0 && a.PerfectDays >= c.Value, nil
	case CondPerfectWeeks:
		if c.Value <= 0 || c.Ratio <= 0 {
			return false, fmt.Errorf("%w: perfect_weeks needs value and ratio", ErrInvalidUnlockCondition)
		}
		qualifying := 0
		for _, rate := range a.WeekRates {
			if rate >= c.Ratio {
				qualifying++
			}
		}
		return qualifying >= c.Value, nil
	case CondPerfectMonth:
		return c.Value > 0 && a.PerfectMonths >= c.Value, nil
	case CondBalance:
		return c.Ratio > 0 && a.BalanceScore >= c.Ratio, nil
	case CondTimeOfDay:
		return c.Ratio > 0 && a.TotalChecks > 0 && a.MorningRatio >= c.Ratio, nil
	case CondWeekendRatio:
		return c.Ratio > 0 && a.TotalChecks > 0 && a.WeekendRatio >= c.Ratio, nil
	}
	return false, fmt.Errorf("%w: unknown type %q", ErrInvalidUnlockCondition, c.Type)
}
