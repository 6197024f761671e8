package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/config"
	"github.com/habitloop/habitloop/engine"
	"github.com/habitloop/habitloop/models"
)

// GrantMultiplier records a time-bounded XP bonus for the user. A grant of the
// same kind never stacks with itself: an existing row is refreshed instead,
// keeping the higher value and the later expiry.
func GrantMultiplier(db *gorm.DB, userID uint, kind string, value float64, now time.Time, window time.Duration) error {
	var existing models.MultiplierGrant
	err := db.Where("user_id = ? AND kind = ?", userID, kind).
		Order("valid_until DESC").
		First(&existing).Error
	switch {
	case err == nil:
		if value > existing.Value {
			existing.Value = value
		}
		if until := now.Add(window); until.After(existing.ValidUntil) {
			existing.ValidUntil = until
		}
		if existing.ValidFrom.After(now) {
			existing.ValidFrom = now
		}
		return db.Save(&existing).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		grant := models.MultiplierGrant{
			UserID:     userID,
			Kind:       kind,
			Value:      value,
			ValidFrom:  now,
			ValidUntil: now.Add(window),
		}
		return db.Create(&grant).Error
	default:
		return err
	}
}

// ActiveGrants returns the user's grants whose validity window contains now.
func ActiveGrants(db *gorm.DB, userID uint, now time.Time) ([]models.MultiplierGrant, error) {
	var grants []models.MultiplierGrant
	err := db.Where("user_id = ? AND valid_from <= ? AND valid_until > ?", userID, now, now).
		Order("valid_from ASC").
		Find(&grants).Error
	return grants, err
}

// EffectiveMultiplier combines the user's active grants with the on-the-fly
// weekend bonus into a single multiplier for now.
func EffectiveMultiplier(db *gorm.DB, cfg config.AppConfig, userID uint, loc *time.Location, now time.Time) (float64, error) {
	rows, err := ActiveGrants(db, userID, now)
	if err != nil {
		return 1.0, err
	}
	grants := make([]engine.Grant, 0, len(rows))
	for _, r := range rows {
		grants = append(grants, r.Grant())
	}
	weekend := engine.IsWeekend(now, loc)
	return engine.CombinedMultiplier(grants, now, weekend, cfg.WeekendBonusValue, cfg.MultiplierCap), nil
}
