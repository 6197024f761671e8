package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop/engine"
	"github.com/habitloop/habitloop/models"
)

// a plain weekday noon, no weekend bonus in play
var wednesday = time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)

func TestCheckGoalAwardsBaseXP(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	user := seedUser(t, db, "UTC")
	goal := seedGoal(t, db, user.ID, string(engine.FreqDaily))

	res, err := CheckGoal(db, cfg, user.ID, goal.ID, wednesday)
	require.NoError(t, err)

	assert.NotEmpty(t, res.Event.UID)
	assert.Equal(t, 1.0, res.Multiplier)
	assert.Equal(t, 10, res.Award.XPAwarded)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 10, fresh.TotalXP)
	require.NotNil(t, fresh.LastCheckAt)
}

func TestCheckGoalDailyCap(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	user := seedUser(t, db, "UTC")
	goal := seedGoal(t, db, user.ID, string(engine.FreqDaily))

	for i := 0; i < cfg.CheckDailyCap; i++ {
		seedEvent(t, db, user.ID, goal.ID, wednesday.Add(-time.Duration(i+1)*time.Hour))
	}

	_, err := CheckGoal(db, cfg, user.ID, goal.ID, wednesday)
	require.ErrorIs(t, err, engine.ErrRateLimited)

	var n int64
	require.NoError(t, db.Model(&models.CheckEvent{}).Count(&n).Error)
	assert.EqualValues(t, cfg.CheckDailyCap, n, "rejected check must not write an event")
}

func TestCheckGoalMinSpacing(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	user := seedUser(t, db, "UTC")
	goal := seedGoal(t, db, user.ID, string(engine.FreqDaily))

	seedEvent(t, db, user.ID, goal.ID, wednesday.Add(-5*time.Second))

	_, err := CheckGoal(db, cfg, user.ID, goal.ID, wednesday)
	require.ErrorIs(t, err, engine.ErrRateLimited)
}

func TestCheckGoalInactive(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	user := seedUser(t, db, "UTC")
	goal := seedGoal(t, db, user.ID, string(engine.FreqDaily))
	require.NoError(t, db.Model(&goal).Update("active", false).Error)

	_, err := CheckGoal(db, cfg, user.ID, goal.ID, wednesday)
	require.ErrorIs(t, err, ErrGoalInactive)
}

func TestCheckGoalWelcomeBack(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	user := seedUser(t, db, "UTC")
	goal := seedGoal(t, db, user.ID, string(engine.FreqDaily))

	lastSeen := wednesday.AddDate(0, 0, -10)
	require.NoError(t, db.Model(&user).Update("last_check_at", lastSeen).Error)

	res, err := CheckGoal(db, cfg, user.ID, goal.ID, wednesday)
	require.NoError(t, err)

	assert.Equal(t, 1.5, res.Multiplier)
	assert.Equal(t, 15, res.Award.XPAwarded)

	var grant models.MultiplierGrant
	require.NoError(t, db.Where("user_id = ? AND kind = ?", user.ID, models.GrantWelcomeBack).First(&grant).Error)
	assert.Equal(t, 1.5, grant.Value)
	assert.Equal(t, wednesday.Add(72*time.Hour).Unix(), grant.ValidUntil.Unix())
}

func TestCheckGoalPerfectWeekBonus(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	user := seedUser(t, db, "UTC")
	goal := seedGoal(t, db, user.ID, string(engine.FreqDaily))

	// previous week (Mon Dec 29 .. Sun Jan 4) fully completed
	for i := 0; i < 7; i++ {
		seedEvent(t, db, user.ID, goal.ID, time.Date(2025, 12, 29+i, 9, 0, 0, 0, time.UTC))
	}
	lastSeen := time.Date(2026, 1, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&user).Update("last_check_at", lastSeen).Error)

	res, err := CheckGoal(db, cfg, user.ID, goal.ID, wednesday)
	require.NoError(t, err)

	assert.InDelta(t, 1.3, res.Multiplier, 1e-9)
	assert.Equal(t, 13, res.Award.XPAwarded)

	var grant models.MultiplierGrant
	require.NoError(t, db.Where("user_id = ? AND kind = ?", user.ID, models.GrantPerfectWeek).First(&grant).Error)
	assert.InDelta(t, 1.3, grant.Value, 1e-9)
}

func TestCheckGoalWeekendBonus(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	user := seedUser(t, db, "UTC")
	goal := seedGoal(t, db, user.ID, string(engine.FreqDaily))

	saturday := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	res, err := CheckGoal(db, cfg, user.ID, goal.ID, saturday)
	require.NoError(t, err)

	assert.InDelta(t, 1.2, res.Multiplier, 1e-9)
	assert.Equal(t, 12, res.Award.XPAwarded)

	// the weekend bonus is computed on the fly, never persisted
	var n int64
	require.NoError(t, db.Model(&models.MultiplierGrant{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestUncheckGoal(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	user := seedUser(t, db, "UTC")
	goal := seedGoal(t, db, user.ID, string(engine.FreqDaily))

	ev := models.CheckEvent{UserID: user.ID, GoalID: goal.ID, OccurredAt: time.Now().UTC()}
	require.NoError(t, db.Create(&ev).Error)

	// immediate uncheck violates the spacing rule
	err := UncheckGoal(db, cfg, user.ID, ev.UID, time.Now())
	require.ErrorIs(t, err, engine.ErrRateLimited)

	require.NoError(t, UncheckGoal(db, cfg, user.ID, ev.UID, time.Now().Add(11*time.Second)))

	var n int64
	require.NoError(t, db.Model(&models.CheckEvent{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestUncheckGoalWrongUser(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	user := seedUser(t, db, "UTC")
	goal := seedGoal(t, db, user.ID, string(engine.FreqDaily))

	ev := models.CheckEvent{UserID: user.ID, GoalID: goal.ID, OccurredAt: time.Now().UTC().Add(-time.Minute)}
	require.NoError(t, db.Create(&ev).Error)

	other := models.User{Username: "intruder"}
	require.NoError(t, db.Create(&other).Error)

	err := UncheckGoal(db, cfg, other.ID, ev.UID, time.Now())
	require.Error(t, err)
}
