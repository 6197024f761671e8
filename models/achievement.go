package models

import (
	"time"

	"github.com/habitloop/habitloop/engine"
)

// Badge types. Monthly badges with Repeatable=true participate in the
// monthly reset lifecycle; all other badges unlock at most once.
const (
	BadgePermanent = "permanent"
	BadgeMonthly   = "monthly"
	BadgeSeasonal  = "seasonal"
	BadgeEvent     = "event"
)

// Achievement is one catalog entry. The catalog is static configuration as far
// as the engine is concerned: seeded at boot, read-only afterwards.
type Achievement struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Key                string    `gorm:"size:64;uniqueIndex;not null" json:"key"`
	Name               string    `gorm:"size:128;not null" json:"name"`
	Description        string    `gorm:"size:255" json:"description"`
	Icon               string    `gorm:"size:16" json:"icon"`
	ConditionType      string    `gorm:"size:32;not null" json:"condition_type"`
	ConditionValue     int       `gorm:"default:0" json:"condition_value"`
	ConditionRatio     float64   `gorm:"default:0" json:"condition_ratio"`
	BadgeType          string    `gorm:"size:16;default:permanent" json:"badge_type"`
	Repeatable         bool      `gorm:"default:false" json:"repeatable"`
	XPReward           int       `gorm:"default:0" json:"xp_reward"`
	RepeatXPMultiplier float64   `gorm:"default:1" json:"repeat_xp_multiplier"`
	CreatedAt          time.Time `json:"created_at"`
}

// Condition converts the stored columns into the engine's tagged union.
func (a Achievement) Condition() engine.Condition {
	return engine.Condition{
		Type:  engine.ConditionType(a.ConditionType),
		Value: a.ConditionValue,
		Ratio: a.ConditionRatio,
	}
}

// UnlockRecord is the active unlock of an achievement for a user. The composite
// unique index is the hard at-most-once guarantee: concurrent evaluations may
// both attempt the insert, and the loser must treat the conflict as success.
type UnlockRecord struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	UserID        uint      `gorm:"uniqueIndex:idx_unlock_user_achievement;not null" json:"user_id"`
	AchievementID uint      `gorm:"uniqueIndex:idx_unlock_user_achievement;not null" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
	XPAwarded     int       `gorm:"default:0" json:"xp_awarded"`
	CreatedAt     time.Time `json:"created_at"`
}

// UnlockHistory is the append-only archive a repeatable unlock moves into on
// each monthly reset. RepeatCount increases monotonically per (user,
// achievement); ResetPeriod ("YYYY-MM") makes the reset job idempotent.
type UnlockHistory struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	UserID        uint      `gorm:"index:idx_history_pair;not null" json:"user_id"`
	AchievementID uint      `gorm:"index:idx_history_pair;not null" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
	XPAwarded     int       `gorm:"default:0" json:"xp_awarded"`
	RepeatCount   int       `gorm:"not null" json:"repeat_count"`
	ResetPeriod   string    `gorm:"size:7;index;not null" json:"reset_period"`
	CreatedAt     time.Time `json:"created_at"`
}
