package engine

import (
	"sort"
	"time"
)

// Streak is the consecutive-day state derived from a user's check history.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// ComputeStreak derives the streak from the set of distinct local calendar
// days ("2006-01-02") that have at least one check, given "today" resolved in
// the same timezone. The current run walks backward from today, or from
// yesterday when today has no check yet: a streak is not broken until a full
// local day elapses with zero checks. Longest is the maximum run anywhere in
// the history.
//
// Callers must always recompute from the authoritative event log — unchecks
// can retroactively shorten a streak, so no incremental counter is safe.
func ComputeStreak(checkDays []string, today string) Streak {
	days := make(map[string]bool, len(checkDays))
	parsed := make([]time.Time, 0, len(checkDays))
	for _, d := range checkDays {
		t, err := time.Parse(DateLayout, d)
		if err != nil || days[d] {
			continue
		}
		days[d] = true
		parsed = append(parsed, t)
	}
	if len(parsed) == 0 {
		return Streak{}
	}

	anchor, err := time.Parse(DateLayout, today)
	if err != nil {
		return Streak{}
	}
	if !days[today] {
		anchor = anchor.AddDate(0, 0, -1)
	}

	current := 0
	for d := anchor; days[d.Format(DateLayout)]; d = d.AddDate(0, 0, -1) {
		current++
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })
	longest, run := 1, 1
	for i := 1; i < len(parsed); i++ {
		if parsed[i].Sub(parsed[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	if current > longest {
		longest = current
	}

	return Streak{Current: current, Longest: longest}
}

// DistinctLocalDays collapses event instants into their distinct local
// calendar days, preserving no particular order.
func DistinctLocalDays(events []time.Time, loc *time.Location) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(events))
	for _, e := range events {
		d := LocalDay(e, loc)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
