package models

import (
	"time"

	"github.com/habitloop/habitloop/engine"
)

// Persisted multiplier grant kinds. The weekend bonus is computed on the fly
// from the user's local weekday and never stored.
const (
	GrantWelcomeBack    = "welcome_back"
	GrantLevelMilestone = "level_milestone"
	GrantPerfectWeek    = "perfect_week"
)

// MultiplierGrant is a time-bounded XP bonus. Several grants of different kinds
// may be active at once; grants of the same kind replace rather than stack.
type MultiplierGrant struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	UserID     uint      `gorm:"index:idx_grants_user_kind;not null" json:"user_id"`
	Kind       string    `gorm:"size:32;index:idx_grants_user_kind;not null" json:"kind"`
	Value      float64   `gorm:"not null" json:"value"`
	ValidFrom  time.Time `gorm:"not null" json:"valid_from"`
	ValidUntil time.Time `gorm:"index;not null" json:"valid_until"`
	CreatedAt  time.Time `json:"created_at"`
}

// Grant converts the row into the engine's value type.
func (m MultiplierGrant) Grant() engine.Grant {
	return engine.Grant{
		Kind:       m.Kind,
		Value:      m.Value,
		ValidFrom:  m.ValidFrom,
		ValidUntil: m.ValidUntil,
	}
}
