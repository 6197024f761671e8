package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the tracker. Passwords are stored as bcrypt hashes only.
// TotalXP is the authoritative experience counter; Level is a cached projection of it
// and is recomputed from TotalXP on every XP change, never trusted as input.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"size:255" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Nickname     string         `gorm:"size:64" json:"nickname"`
	Timezone     string         `gorm:"size:64" json:"timezone"`
	TotalXP      int            `gorm:"default:0" json:"total_xp"`
	Level        int            `gorm:"default:1" json:"level"`
	LastCheckAt  *time.Time     `json:"last_check_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Goals        []Goal         `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Level == 0 {
		u.Level = 1
	}
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
