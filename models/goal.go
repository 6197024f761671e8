package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/engine"
)

// Goal is a trackable item with a frequency policy. The analytics engine only
// reads goals; creation and edits happen through the goal CRUD endpoints.
type Goal struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Notes       string         `gorm:"size:1024" json:"notes"`
	Frequency   string         `gorm:"size:32;not null" json:"frequency"`
	WeekdayMask int            `gorm:"default:0" json:"weekday_mask"`
	TargetCount int            `gorm:"default:0" json:"target_count"`
	Active      bool           `gorm:"default:true;index" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Policy converts the stored frequency columns into the engine's value type.
func (g Goal) Policy() engine.GoalPolicy {
	return engine.GoalPolicy{
		Frequency:   engine.Frequency(g.Frequency),
		WeekdayMask: g.WeekdayMask,
		TargetCount: g.TargetCount,
	}
}

// Tracked reports whether the goal participates in completion-rate aggregates.
func (g Goal) Tracked() bool {
	return g.Active && engine.Frequency(g.Frequency) != engine.FreqUntracked
}
