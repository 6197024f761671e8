package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/models"
	"github.com/habitloop/habitloop/utils"
)

// ResetSummary reports what a monthly reset pass did.
type ResetSummary struct {
	Period     string `json:"period"`
	ResetCount int    `json:"reset_count"`
	ErrorCount int    `json:"error_count"`
}

// ResetMonthlyBadges archives every active unlock of a repeatable monthly
// badge into the history table and removes the live record, making the badge
// earnable again. The pass is idempotent per calendar month: a pair already
// archived under the current period key is skipped, so overlapping or
// repeated runs within one month do nothing extra. Failures are counted per
// pair and never abort the sweep.
func ResetMonthlyBadges(db *gorm.DB, now time.Time) (ResetSummary, error) {
	period := now.UTC().Format("2006-01")
	sum := ResetSummary{Period: period}

	var monthly []models.Achievement
	if err := db.Where("badge_type = ? AND repeatable = ?", models.BadgeMonthly, true).
		Find(&monthly).Error; err != nil {
		return sum, err
	}
	if len(monthly) == 0 {
		return sum, nil
	}
	ids := make([]uint, 0, len(monthly))
	for _, a := range monthly {
		ids = append(ids, a.ID)
	}

	var records []models.UnlockRecord
	if err := db.Where("achievement_id IN ?", ids).Find(&records).Error; err != nil {
		return sum, err
	}

	for _, rec := range records {
		var archived int64
		if err := db.Model(&models.UnlockHistory{}).
			Where("user_id = ? AND achievement_id = ? AND reset_period = ?", rec.UserID, rec.AchievementID, period).
			Count(&archived).Error; err != nil {
			sum.ErrorCount++
			continue
		}
		if archived > 0 {
			continue
		}

		rec := rec
		err := db.Transaction(func(tx *gorm.DB) error {
			var maxRepeat int
			if err := tx.Model(&models.UnlockHistory{}).
				Where("user_id = ? AND achievement_id = ?", rec.UserID, rec.AchievementID).
				Select("COALESCE(MAX(repeat_count), 0)").
				Scan(&maxRepeat).Error; err != nil {
				return err
			}

			hist := models.UnlockHistory{
				UserID:        rec.UserID,
				AchievementID: rec.AchievementID,
				UnlockedAt:    rec.UnlockedAt,
				XPAwarded:     rec.XPAwarded,
				RepeatCount:   maxRepeat + 1,
				ResetPeriod:   period,
			}
			if err := tx.Create(&hist).Error; err != nil {
				return err
			}
			return tx.Delete(&models.UnlockRecord{}, rec.ID).Error
		})
		if err != nil {
			sum.ErrorCount++
			utils.Sugar.Warnw("monthly badge reset failed for pair",
				"user_id", rec.UserID, "achievement_id", rec.AchievementID, "err", err)
			continue
		}
		sum.ResetCount++
	}

	if sum.ResetCount > 0 || sum.ErrorCount > 0 {
		utils.Sugar.Infow("monthly badge reset finished",
			"period", period, "reset", sum.ResetCount, "errors", sum.ErrorCount)
	}
	return sum, nil
}
