package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var noon = time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC) // a Wednesday

func grantAround(kind string, value float64, now time.Time) Grant {
	return Grant{Kind: kind, Value: value, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour)}
}

func TestCombinedMultiplier_AdditiveStacking(t *testing.T) {
	grants := []Grant{
		grantAround("welcome_back", 1.5, noon),
		grantAround("perfect_week", 1.3, noon),
	}
	// 1 + 0.5 + 0.3, not 1.5 * 1.3
	assert.InDelta(t, 1.8, CombinedMultiplier(grants, noon, false, 0, 0), 1e-9)
}

func TestCombinedMultiplier_IgnoresExpiredAndFuture(t *testing.T) {
	grants := []Grant{
		{Kind: "welcome_back", Value: 1.5, ValidFrom: noon.Add(-3 * time.Hour), ValidUntil: noon.Add(-time.Hour)},
		{Kind: "perfect_week", Value: 1.3, ValidFrom: noon.Add(time.Hour), ValidUntil: noon.Add(3 * time.Hour)},
	}
	assert.InDelta(t, 1.0, CombinedMultiplier(grants, noon, false, 0, 0), 1e-9)
}

func TestCombinedMultiplier_ValidUntilExclusive(t *testing.T) {
	g := Grant{Kind: "welcome_back", Value: 1.5, ValidFrom: noon.Add(-time.Hour), ValidUntil: noon}
	assert.False(t, g.Active(noon), "a grant is inactive at its ValidUntil instant")

	g2 := Grant{Kind: "welcome_back", Value: 1.5, ValidFrom: noon, ValidUntil: noon.Add(time.Hour)}
	assert.True(t, g2.Active(noon), "a grant is active at its ValidFrom instant")
}

func TestCombinedMultiplier_WeekendBonusOnTheFly(t *testing.T) {
	assert.InDelta(t, 1.2, CombinedMultiplier(nil, noon, true, 1.2, 0), 1e-9)
	assert.InDelta(t, 1.0, CombinedMultiplier(nil, noon, false, 1.2, 0), 1e-9)

	// weekend bonus stacks additively with persisted grants
	grants := []Grant{grantAround("welcome_back", 1.5, noon)}
	assert.InDelta(t, 1.7, CombinedMultiplier(grants, noon, true, 1.2, 0), 1e-9)
}

func TestCombinedMultiplier_CapPolicy(t *testing.T) {
	grants := []Grant{
		grantAround("welcome_back", 1.5, noon),
		grantAround("perfect_week", 1.5, noon),
		grantAround("level_milestone", 1.5, noon),
	}
	assert.InDelta(t, 2.5, CombinedMultiplier(grants, noon, false, 0, 0), 1e-9, "uncapped by default")
	assert.InDelta(t, 2.0, CombinedMultiplier(grants, noon, false, 0, 2.0), 1e-9, "capped when configured")
}

func TestIsWeekend(t *testing.T) {
	tokyo, _ := time.LoadLocation("Asia/Tokyo")

	saturdayUTC := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)
	assert.True(t, IsWeekend(saturdayUTC, time.UTC))

	// Friday 20:00 UTC is already Saturday in Tokyo.
	fridayLateUTC := time.Date(2025, 6, 13, 20, 0, 0, 0, time.UTC)
	assert.False(t, IsWeekend(fridayLateUTC, time.UTC))
	assert.True(t, IsWeekend(fridayLateUTC, tokyo))
}

func TestApplyMultiplier(t *testing.T) {
	assert.Equal(t, 10, ApplyMultiplier(10, 1.0))
	assert.Equal(t, 18, ApplyMultiplier(10, 1.8))
	assert.Equal(t, 13, ApplyMultiplier(10, 1.25), "rounds half away from zero")
	assert.Equal(t, 0, ApplyMultiplier(0, 2.0))
	assert.Equal(t, 10, ApplyMultiplier(10, 0.5), "multiplier never reduces below base")
}
