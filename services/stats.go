package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/config"
	"github.com/habitloop/habitloop/engine"
	"github.com/habitloop/habitloop/models"
)

const (
	perfectDayLookbackDays = 90
	weekRateLookback       = 12
	perfectMonthLookback   = 6
	balanceLookbackDays    = 30
	morningStartHour       = 5
	morningEndHour         = 12
)

// UserTimezone resolves the IANA zone a user's stats are computed in,
// falling back to the configured default when the profile has none.
func UserTimezone(user models.User, cfg config.AppConfig) string {
	if user.Timezone != "" {
		return user.Timezone
	}
	return cfg.DefaultTimezone
}

// BuildAggregates assembles the derived-state snapshot condition predicates
// run against. It reads the full check log once and computes everything in
// memory; all calendar math happens in the user's timezone.
func BuildAggregates(db *gorm.DB, cfg config.AppConfig, user models.User, now time.Time) (engine.Aggregates, error) {
	var agg engine.Aggregates

	tz := UserTimezone(user, cfg)
	loc, err := engine.LoadTimezone(tz)
	if err != nil {
		return agg, err
	}

	var goals []models.Goal
	if err := db.Where("user_id = ? AND active = ?", user.ID, true).Find(&goals).Error; err != nil {
		return agg, err
	}

	var events []models.CheckEvent
	if err := db.Where("user_id = ?", user.ID).Order("occurred_at ASC").Find(&events).Error; err != nil {
		return agg, err
	}

	times := make([]time.Time, 0, len(events))
	byGoal := make(map[uint][]time.Time)
	for _, e := range events {
		times = append(times, e.OccurredAt)
		byGoal[e.GoalID] = append(byGoal[e.GoalID], e.OccurredAt)
	}

	days := engine.DistinctLocalDays(times, loc)
	streak := engine.ComputeStreak(days, engine.LocalDay(now, loc))

	agg.CurrentStreak = streak.Current
	agg.LongestStreak = streak.Longest
	agg.TotalChecks = len(events)
	agg.PerfectDays = countPerfectDays(goals, byGoal, now, loc)
	agg.WeekRates = recentWeekRates(goals, byGoal, now, tz, loc, cfg.WeekStartDay())
	agg.PerfectMonths = countPerfectMonths(goals, byGoal, now, tz, loc, cfg.WeekStartDay())
	agg.BalanceScore = balanceScore(goals, byGoal, now)
	agg.MorningRatio, agg.WeekendRatio = timeRatios(times, loc)
	agg.Level = engine.LevelFromXP(user.TotalXP)

	return agg, nil
}

// dailyDaySets maps each active daily goal to the set of local days it was
// checked on. A day is perfect when every daily goal appears in it.
func dailyDaySets(goals []models.Goal, byGoal map[uint][]time.Time, loc *time.Location) []map[string]bool {
	var sets []map[string]bool
	for _, g := range goals {
		if engine.Frequency(g.Frequency) != engine.FreqDaily {
			continue
		}
		set := map[string]bool{}
		for _, t := range byGoal[g.ID] {
			set[engine.LocalDay(t, loc)] = true
		}
		sets = append(sets, set)
	}
	return sets
}

func isPerfectDay(sets []map[string]bool, day string) bool {
	if len(sets) == 0 {
		return false
	}
	for _, set := range sets {
		if !set[day] {
			return false
		}
	}
	return true
}

// countPerfectDays counts local days in the recent lookback where every daily
// goal was checked at least once. Today is included once it qualifies.
func countPerfectDays(goals []models.Goal, byGoal map[uint][]time.Time, now time.Time, loc *time.Location) int {
	sets := dailyDaySets(goals, byGoal, loc)
	if len(sets) == 0 {
		return 0
	}

	local := now.In(loc)
	count := 0
	for i := 0; i < perfectDayLookbackDays; i++ {
		day := local.AddDate(0, 0, -i).Format(engine.DateLayout)
		if isPerfectDay(sets, day) {
			count++
		}
	}
	return count
}

// recentWeekRates returns completion rates for the most recent complete
// weeks, oldest first. The in-progress week is excluded so a fresh Monday
// never reads as a failed week.
func recentWeekRates(goals []models.Goal, byGoal map[uint][]time.Time, now time.Time, tz string, loc *time.Location, weekStart time.Weekday) []float64 {
	current, err := engine.WindowAt(now, tz, engine.PeriodWeek, weekStart)
	if err != nil {
		return nil
	}

	rates := make([]float64, 0, weekRateLookback)
	for i := weekRateLookback; i >= 1; i-- {
		anchor := current.Start.AddDate(0, 0, -7*i)
		week, err := engine.ResolveWindow(anchor.In(loc).Format(engine.DateLayout), tz, engine.PeriodWeek, weekStart)
		if err != nil {
			continue
		}
		if rate, ok := weekRate(goals, byGoal, week, loc); ok {
			rates = append(rates, rate)
		}
	}
	return rates
}

// weekRate averages per-goal completion over one week window. Goals without a
// weekly target are skipped; ok is false when nothing was eligible.
func weekRate(goals []models.Goal, byGoal map[uint][]time.Time, week engine.Window, loc *time.Location) (float64, bool) {
	var sum float64
	var n int
	for _, g := range goals {
		rate, ok := engine.WindowRate(g.Policy(), byGoal[g.ID], week, loc)
		if !ok {
			continue
		}
		sum += rate
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// countPerfectMonths counts recent complete months in which every local day
// was a perfect day. Only meaningful for users with daily goals.
func countPerfectMonths(goals []models.Goal, byGoal map[uint][]time.Time, now time.Time, tz string, loc *time.Location, weekStart time.Weekday) int {
	sets := dailyDaySets(goals, byGoal, loc)
	if len(sets) == 0 {
		return 0
	}

	count := 0
	local := now.In(loc)
	for i := 1; i <= perfectMonthLookback; i++ {
		anchor := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -i, 0)
		month, err := engine.ResolveWindow(anchor.Format(engine.DateLayout), tz, engine.PeriodMonth, weekStart)
		if err != nil {
			continue
		}
		perfect := true
		for d := month.Start; d.Before(month.End); d = d.AddDate(0, 0, 1) {
			if !isPerfectDay(sets, d.In(loc).Format(engine.DateLayout)) {
				perfect = false
				break
			}
		}
		if perfect {
			count++
		}
	}
	return count
}

// balanceScore is the min/max ratio of per-goal check counts over the recent
// window. It needs at least two tracked goals with activity to mean anything.
func balanceScore(goals []models.Goal, byGoal map[uint][]time.Time, now time.Time) float64 {
	since := now.AddDate(0, 0, -balanceLookbackDays)

	var counts []int
	for _, g := range goals {
		if !g.Tracked() {
			continue
		}
		n := 0
		for _, t := range byGoal[g.ID] {
			if !t.Before(since) {
				n++
			}
		}
		counts = append(counts, n)
	}
	if len(counts) < 2 {
		return 0
	}

	minC, maxC := counts[0], counts[0]
	for _, c := range counts[1:] {
		if c < minC {
			minC = c
		}
		if c > maxC {
			maxC = c
		}
	}
	if maxC == 0 {
		return 0
	}
	return float64(minC) / float64(maxC)
}

// timeRatios derives the morning and weekend shares of the full check log.
func timeRatios(times []time.Time, loc *time.Location) (morning, weekend float64) {
	if len(times) == 0 {
		return 0, 0
	}
	var m, w int
	for _, t := range times {
		local := t.In(loc)
		if h := local.Hour(); h >= morningStartHour && h < morningEndHour {
			m++
		}
		if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
			w++
		}
	}
	total := float64(len(times))
	return float64(m) / total, float64(w) / total
}
