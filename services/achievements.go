package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/habitloop/habitloop/config"
	"github.com/habitloop/habitloop/engine"
	"github.com/habitloop/habitloop/models"
	"github.com/habitloop/habitloop/utils"
)

// UnlockOutcome describes one achievement unlocked during an evaluation pass.
type UnlockOutcome struct {
	Achievement models.Achievement `json:"achievement"`
	XPAwarded   int                `json:"xp_awarded"`
	Repeat      bool               `json:"repeat"`
}

// EvaluateAndUnlock runs the full catalog against the user's current
// aggregates and records every newly satisfied achievement. Aggregates are
// computed once per pass. The unique index on (user, achievement) is the
// at-most-once guarantee: a conflicting insert means another evaluation won
// the race, and the loser awards nothing. Unlock rewards pass through the
// active multiplier the same way check-in XP does. Malformed catalog entries
// are logged and skipped so one bad row cannot poison the batch.
func EvaluateAndUnlock(db *gorm.DB, cfg config.AppConfig, userID uint, now time.Time) ([]UnlockOutcome, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	agg, err := BuildAggregates(db, cfg, user, now)
	if err != nil {
		return nil, err
	}
	loc, err := engine.LoadTimezone(UserTimezone(user, cfg))
	if err != nil {
		return nil, err
	}

	var catalog []models.Achievement
	if err := db.Order("id ASC").Find(&catalog).Error; err != nil {
		return nil, err
	}

	var active []models.UnlockRecord
	if err := db.Where("user_id = ?", userID).Find(&active).Error; err != nil {
		return nil, err
	}
	activeSet := make(map[uint]bool, len(active))
	for _, rec := range active {
		activeSet[rec.AchievementID] = true
	}

	var outcomes []UnlockOutcome
	for _, a := range catalog {
		if activeSet[a.ID] {
			continue
		}

		met, err := engine.Evaluate(a.Condition(), agg)
		if err != nil {
			if errors.Is(err, engine.ErrInvalidUnlockCondition) {
				utils.Sugar.Warnw("skipping malformed achievement condition",
					"achievement", a.Key, "condition_type", a.ConditionType)
				continue
			}
			return outcomes, err
		}
		if !met {
			continue
		}

		baseXP, repeat, err := unlockXP(db, a, userID)
		if err != nil {
			return outcomes, err
		}

		var xp int
		err = db.Transaction(func(tx *gorm.DB) error {
			mult, err := EffectiveMultiplier(tx, cfg, userID, loc, now)
			if err != nil {
				return err
			}
			xp = engine.ApplyMultiplier(baseXP, mult)
			rec := models.UnlockRecord{
				UserID:        userID,
				AchievementID: a.ID,
				UnlockedAt:    now,
				XPAwarded:     xp,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return engine.ErrDuplicateUnlock
			}
			if xp > 0 {
				if _, err := AwardXP(tx, cfg, userID, xp, now); err != nil {
					return err
				}
			}
			return nil
		})
		if errors.Is(err, engine.ErrDuplicateUnlock) {
			continue
		}
		if err != nil {
			return outcomes, err
		}

		outcomes = append(outcomes, UnlockOutcome{Achievement: a, XPAwarded: xp, Repeat: repeat})
	}

	return outcomes, nil
}

// unlockXP determines the award for unlocking a. Repeat unlocks of a
// repeatable badge pay XPReward scaled by RepeatXPMultiplier; the first
// unlock always pays face value.
func unlockXP(db *gorm.DB, a models.Achievement, userID uint) (int, bool, error) {
	if !a.Repeatable {
		return a.XPReward, false, nil
	}

	var prior int64
	err := db.Model(&models.UnlockHistory{}).
		Where("user_id = ? AND achievement_id = ?", userID, a.ID).
		Count(&prior).Error
	if err != nil {
		return 0, false, err
	}
	if prior == 0 {
		return a.XPReward, false, nil
	}
	if a.RepeatXPMultiplier <= 0 {
		return a.XPReward, true, nil
	}
	return int(math.Round(float64(a.XPReward) * a.RepeatXPMultiplier)), true, nil
}

// ActiveUnlocks lists the user's current unlock records joined with their
// catalog entries, newest first.
func ActiveUnlocks(db *gorm.DB, userID uint) ([]UnlockOutcome, error) {
	var records []models.UnlockRecord
	if err := db.Where("user_id = ?", userID).Order("unlocked_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []UnlockOutcome{}, nil
	}

	ids := make([]uint, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.AchievementID)
	}
	var catalog []models.Achievement
	if err := db.Where("id IN ?", ids).Find(&catalog).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Achievement, len(catalog))
	for _, a := range catalog {
		byID[a.ID] = a
	}

	out := make([]UnlockOutcome, 0, len(records))
	for _, rec := range records {
		out = append(out, UnlockOutcome{
			Achievement: byID[rec.AchievementID],
			XPAwarded:   rec.XPAwarded,
		})
	}
	return out, nil
}
