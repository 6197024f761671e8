package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/config"
	"github.com/habitloop/habitloop/engine"
	"github.com/habitloop/habitloop/models"
)

// AwardResult reports the outcome of a single XP credit.
type AwardResult struct {
	XPAwarded int  `json:"xp_awarded"`
	TotalXP   int  `json:"total_xp"`
	Level     int  `json:"level"`
	LeveledUp bool `json:"leveled_up"`
}

// AwardXP credits xp to the user inside the given transaction. TotalXP is
// incremented with a single SQL expression so concurrent awards cannot lose
// updates; Level is then recomputed from the fresh total. Crossing a
// milestone level triggers a level-milestone multiplier grant.
func AwardXP(tx *gorm.DB, cfg config.AppConfig, userID uint, xp int, now time.Time) (AwardResult, error) {
	var res AwardResult
	if xp <= 0 {
		xp = 0
	}

	var before models.User
	if err := tx.Select("id", "total_xp", "level").First(&before, userID).Error; err != nil {
		return res, err
	}
	oldLevel := engine.LevelFromXP(before.TotalXP)

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("total_xp", gorm.Expr("total_xp + ?", xp)).Error; err != nil {
		return res, err
	}

	var after models.User
	if err := tx.Select("id", "total_xp").First(&after, userID).Error; err != nil {
		return res, err
	}
	newLevel := engine.LevelFromXP(after.TotalXP)
	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("level", newLevel).Error; err != nil {
		return res, err
	}

	res = AwardResult{
		XPAwarded: xp,
		TotalXP:   after.TotalXP,
		Level:     newLevel,
		LeveledUp: newLevel > oldLevel,
	}

	// A large award can jump several levels at once, so compare milestone
	// counts on both sides of the change rather than just the landing level.
	crossedMilestone := cfg.MilestoneInterval > 0 &&
		newLevel/cfg.MilestoneInterval > oldLevel/cfg.MilestoneInterval
	if res.LeveledUp && crossedMilestone {
		window := time.Duration(cfg.MilestoneWindowHours) * time.Hour
		if err := GrantMultiplier(tx, userID, models.GrantLevelMilestone, cfg.MilestoneValue, now, window); err != nil {
			return res, err
		}
	}

	return res, nil
}
