package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/config"
	"github.com/habitloop/habitloop/engine"
	"github.com/habitloop/habitloop/models"
	"github.com/habitloop/habitloop/utils"
)

// ErrGoalInactive means the goal exists but no longer accepts checks.
var ErrGoalInactive = errors.New("goal inactive")

// Redis cooldown hooks, swappable in tests.
var (
	cooldownFastPath = utils.CheckCooldownHit
	cooldownClear    = utils.ClearCheckCooldown
)

// CheckResult is what a successful check-in hands back to the API layer.
type CheckResult struct {
	Event      models.CheckEvent `json:"event"`
	Multiplier float64           `json:"multiplier"`
	Award      AwardResult       `json:"award"`
	Unlocked   []UnlockOutcome   `json:"unlocked"`
}

// CheckGoal records one check event and runs the full downstream chain:
// anti-abuse guard, multiplier resolution, XP award, welcome-back and
// perfect-week grants, achievement evaluation, cache invalidation.
//
// The guard is two layered. Redis SetNX is a cheap fast path that rejects
// rapid double taps before touching the database; the transaction then
// re-checks both the per-goal daily cap and the minimum spacing against the
// event log, which stays authoritative when Redis is down.
func CheckGoal(db *gorm.DB, cfg config.AppConfig, userID, goalID uint, now time.Time) (CheckResult, error) {
	var result CheckResult

	var goal models.Goal
	if err := db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		return result, err
	}
	if !goal.Active {
		return result, ErrGoalInactive
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return result, err
	}

	tz := UserTimezone(user, cfg)
	loc, err := engine.LoadTimezone(tz)
	if err != nil {
		return result, err
	}

	spacing := time.Duration(cfg.CheckMinSpacingSec) * time.Second
	if cooldownFastPath(userID, goalID, spacing) {
		return result, engine.ErrRateLimited
	}

	day, err := engine.WindowAt(now, tz, engine.PeriodDay, cfg.WeekStartDay())
	if err != nil {
		return result, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var todayCount int64
		if err := tx.Model(&models.CheckEvent{}).
			Where("goal_id = ? AND occurred_at >= ? AND occurred_at < ?", goalID, day.Start, day.End).
			Count(&todayCount).Error; err != nil {
			return err
		}
		if int(todayCount) >= cfg.CheckDailyCap {
			return engine.ErrRateLimited
		}

		var last models.CheckEvent
		err := tx.Where("goal_id = ?", goalID).Order("occurred_at DESC").First(&last).Error
		if err == nil && now.Sub(last.OccurredAt) < spacing {
			return engine.ErrRateLimited
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		event := models.CheckEvent{GoalID: goalID, UserID: userID, OccurredAt: now.UTC()}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		result.Event = event

		if err := maybeGrantWelcomeBack(tx, cfg, user, now); err != nil {
			return err
		}
		if err := maybeGrantPerfectWeek(tx, cfg, user, tz, loc, now); err != nil {
			return err
		}

		mult, err := EffectiveMultiplier(tx, cfg, userID, loc, now)
		if err != nil {
			return err
		}
		result.Multiplier = mult

		award, err := AwardXP(tx, cfg, userID, engine.ApplyMultiplier(cfg.CheckXPBase, mult), now)
		if err != nil {
			return err
		}
		result.Award = award

		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("last_check_at", now).Error
	})
	if err != nil {
		if !errors.Is(err, engine.ErrRateLimited) {
			cooldownClear(userID, goalID)
		}
		return CheckResult{}, err
	}

	utils.InvalidateByPrefix(fmt.Sprintf("stats:%d:", userID))

	unlocked, err := EvaluateAndUnlock(db, cfg, userID, now)
	if err != nil {
		utils.Sugar.Warnw("achievement evaluation failed after check",
			"user_id", userID, "err", err)
	}
	result.Unlocked = unlocked

	return result, nil
}

// UncheckGoal removes a check event by its public UID. The spacing rule
// applies symmetrically so check/uncheck loops cannot farm multiplier windows.
func UncheckGoal(db *gorm.DB, cfg config.AppConfig, userID uint, uid string, now time.Time) error {
	var event models.CheckEvent
	if err := db.Where("uid = ? AND user_id = ?", uid, userID).First(&event).Error; err != nil {
		return err
	}

	if now.Sub(event.CreatedAt) < time.Duration(cfg.CheckMinSpacingSec)*time.Second {
		return engine.ErrRateLimited
	}

	if err := db.Delete(&models.CheckEvent{}, event.ID).Error; err != nil {
		return err
	}

	utils.InvalidateByPrefix(fmt.Sprintf("stats:%d:", userID))
	return nil
}

// maybeGrantWelcomeBack issues the comeback bonus when the gap since the
// user's previous check crosses the configured threshold. First-ever checks
// never trigger it.
func maybeGrantWelcomeBack(tx *gorm.DB, cfg config.AppConfig, user models.User, now time.Time) error {
	if user.LastCheckAt == nil {
		return nil
	}
	gap := time.Duration(cfg.WelcomeBackGapDays) * 24 * time.Hour
	if now.Sub(*user.LastCheckAt) < gap {
		return nil
	}
	window := time.Duration(cfg.WelcomeBackWindowHours) * time.Hour
	return GrantMultiplier(tx, user.ID, models.GrantWelcomeBack, cfg.WelcomeBackValue, now, window)
}

// maybeGrantPerfectWeek issues the bonus on the first check of a new week
// when the previous week's completion rate met the threshold.
func maybeGrantPerfectWeek(tx *gorm.DB, cfg config.AppConfig, user models.User, tz string, loc *time.Location, now time.Time) error {
	week, err := engine.WindowAt(now, tz, engine.PeriodWeek, cfg.WeekStartDay())
	if err != nil {
		return err
	}
	// only fires on the week's first check: the previous check, if any,
	// must predate the current week
	if user.LastCheckAt != nil && !user.LastCheckAt.Before(week.Start) {
		return nil
	}
	if user.LastCheckAt == nil {
		return nil
	}

	prevAnchor := week.Start.AddDate(0, 0, -7)
	prev, err := engine.ResolveWindow(prevAnchor.In(loc).Format(engine.DateLayout), tz, engine.PeriodWeek, cfg.WeekStartDay())
	if err != nil {
		return err
	}

	var goals []models.Goal
	if err := tx.Where("user_id = ? AND active = ?", user.ID, true).Find(&goals).Error; err != nil {
		return err
	}
	var events []models.CheckEvent
	if err := tx.Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", user.ID, prev.Start, prev.End).
		Find(&events).Error; err != nil {
		return err
	}
	byGoal := make(map[uint][]time.Time)
	for _, e := range events {
		byGoal[e.GoalID] = append(byGoal[e.GoalID], e.OccurredAt)
	}

	rate, ok := weekRate(goals, byGoal, prev, loc)
	if !ok || rate < cfg.PerfectWeekThreshold {
		return nil
	}

	window := time.Duration(cfg.PerfectWeekWindowHours) * time.Hour
	return GrantMultiplier(tx, user.ID, models.GrantPerfectWeek, cfg.PerfectWeekValue, now, window)
}
