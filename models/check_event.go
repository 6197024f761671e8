package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckEvent is one timestamped confirmation that a user performed a goal.
// Events are append-only; an uncheck deletes the row wholesale. UID is the
// public identifier handed to clients for uncheck addressing.
type CheckEvent struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	UID        string    `gorm:"size:36;uniqueIndex;not null" json:"uid"`
	GoalID     uint      `gorm:"index:idx_checks_goal_time;not null" json:"goal_id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	OccurredAt time.Time `gorm:"index:idx_checks_goal_time;not null" json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate assigns the public UID when the caller did not provide one.
func (c *CheckEvent) BeforeCreate(tx *gorm.DB) error {
	if c.UID == "" {
		c.UID = uuid.NewString()
	}
	if c.OccurredAt.IsZero() {
		c.OccurredAt = time.Now().UTC()
	}
	return nil
}
