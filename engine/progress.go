package engine

import (
	"math/bits"
	"time"
)

// Frequency is a goal's frequency policy.
type Frequency string

const (
	FreqDaily        Frequency = "daily"
	FreqWeeklyDays   Frequency = "weekly_days"
	FreqWeeklyCount  Frequency = "weekly_count"
	FreqMonthlyCount Frequency = "monthly_count"
	FreqUntracked    Frequency = "untracked"
)

// GoalPolicy is the slice of a goal the progress calculator needs.
// WeekdayMask is a bitmask over time.Weekday (bit 0 = Sunday) and applies
// only to FreqWeeklyDays; TargetCount applies only to the *_count policies.
type GoalPolicy struct {
	Frequency   Frequency
	WeekdayMask int
	TargetCount int
}

// Progress is the state of a goal within its current period. Target is nil
// for untracked goals, which never contribute to completion aggregates.
type Progress struct {
	Achieved    int    `json:"achieved"`
	Target      *int   `json:"target"`
	PeriodLabel string `json:"period_label"`
	Complete    bool   `json:"complete"`
}

// GoalProgress computes progress for the period containing now. It is pure and
// re-evaluated per query; events are that goal's full check history (extra
// events outside the window are ignored).
func GoalProgress(policy GoalPolicy, events []time.Time, now time.Time, tz string, weekStart time.Weekday) (Progress, error) {
	loc, err := LoadTimezone(tz)
	if err != nil {
		return Progress{}, err
	}

	switch policy.Frequency {
	case FreqDaily:
		w, err := WindowAt(now, tz, PeriodDay, weekStart)
		if err != nil {
			return Progress{}, err
		}
		achieved := countIn(events, w)
		return Progress{Achieved: achieved, Target: intPtr(1), PeriodLabel: w.Label, Complete: achieved >= 1}, nil

	case FreqWeeklyDays:
		w, err := WindowAt(now, tz, PeriodWeek, weekStart)
		if err != nil {
			return Progress{}, err
		}
		target := bits.OnesCount(uint(policy.WeekdayMask) & 0x7F)
		achieved := qualifyingDays(events, w, loc, policy.WeekdayMask)
		return Progress{Achieved: achieved, Target: intPtr(target), PeriodLabel: w.Label, Complete: target > 0 && achieved >= target}, nil

	case FreqWeeklyCount, FreqMonthlyCount:
		kind := PeriodWeek
		if policy.Frequency == FreqMonthlyCount {
			kind = PeriodMonth
		}
		w, err := WindowAt(now, tz, kind, weekStart)
		if err != nil {
			return Progress{}, err
		}
		achieved := countIn(events, w)
		return Progress{Achieved: achieved, Target: intPtr(policy.TargetCount), PeriodLabel: w.Label, Complete: policy.TargetCount > 0 && achieved >= policy.TargetCount}, nil

	case FreqUntracked:
		return Progress{}, nil
	}

	return Progress{}, nil
}

// WindowRate computes a goal's completion fraction inside an arbitrary weekly
// window, clamped to 1. The second result is false for goals with no weekly
// target (monthly counts, untracked, zero-target policies), which must not
// contribute to week-rate averages.
func WindowRate(policy GoalPolicy, events []time.Time, w Window, loc *time.Location) (float64, bool) {
	var achieved, target int
	switch policy.Frequency {
	case FreqDaily:
		target = 7
		seen := map[string]bool{}
		for _, e := range events {
			if w.Contains(e) {
				seen[e.In(loc).Format(DateLayout)] = true
			}
		}
		achieved = len(seen)
	case FreqWeeklyDays:
		target = bits.OnesCount(uint(policy.WeekdayMask) & 0x7F)
		achieved = qualifyingDays(events, w, loc, policy.WeekdayMask)
	case FreqWeeklyCount:
		target = policy.TargetCount
		achieved = countIn(events, w)
	default:
		return 0, false
	}
	if target <= 0 {
		return 0, false
	}
	rate := float64(achieved) / float64(target)
	if rate > 1 {
		rate = 1
	}
	return rate, true
}

// countIn counts occurrences (not distinct days) inside the window.
func countIn(events []time.Time, w Window) int {
	n := 0
	for _, e := range events {
		if w.Contains(e) {
			n++
		}
	}
	return n
}

// qualifyingDays counts distinct local days inside the window whose weekday
// bit is set in the mask.
func qualifyingDays(events []time.Time, w Window, loc *time.Location, mask int) int {
	seen := map[string]bool{}
	for _, e := range events {
		if !w.Contains(e) {
			continue
		}
		local := e.In(loc)
		if mask&(1<<uint(local.Weekday())) == 0 {
			continue
		}
		seen[local.Format(DateLayout)] = true
	}
	return len(seen)
}

func intPtr(v int) *int { return &v }
