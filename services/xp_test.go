package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/habitloop/habitloop/models"
)

func TestAwardXPAccumulates(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	user := seedUser(t, db, "UTC")

	var res AwardResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = AwardXP(tx, cfg, user.ID, 60, wednesday)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 60, res.TotalXP)
	assert.Equal(t, 1, res.Level)
	assert.False(t, res.LeveledUp)

	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = AwardXP(tx, cfg, user.ID, 60, wednesday)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 120, res.TotalXP)
	assert.Equal(t, 2, res.Level)
	assert.True(t, res.LeveledUp)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 120, fresh.TotalXP)
	assert.Equal(t, 2, fresh.Level)
}

func TestAwardXPMilestoneGrant(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	user := seedUser(t, db, "UTC")

	// 700 XP lands exactly on level 5, the first milestone
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := AwardXP(tx, cfg, user.ID, 700, wednesday)
		return err
	})
	require.NoError(t, err)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 5, fresh.Level)

	var grant models.MultiplierGrant
	require.NoError(t, db.Where("user_id = ? AND kind = ?", user.ID, models.GrantLevelMilestone).First(&grant).Error)
	assert.Equal(t, 1.25, grant.Value)
}

func TestAwardXPMilestoneCrossedByJump(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	user := seedUser(t, db, "UTC")

	// 1000 XP jumps straight to level 6, past the level-5 milestone
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := AwardXP(tx, cfg, user.ID, 1000, wednesday)
		return err
	})
	require.NoError(t, err)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 6, fresh.Level)

	var grant models.MultiplierGrant
	require.NoError(t, db.Where("user_id = ? AND kind = ?", user.ID, models.GrantLevelMilestone).First(&grant).Error,
		"a jump over a milestone level must still grant the bonus")
	assert.Equal(t, 1.25, grant.Value)
}

func TestAwardXPZeroIsNoOp(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	user := seedUser(t, db, "UTC")

	err := db.Transaction(func(tx *gorm.DB) error {
		res, err := AwardXP(tx, cfg, user.ID, -5, wednesday)
		require.NoError(t, err)
		assert.Equal(t, 0, res.XPAwarded)
		assert.Equal(t, 0, res.TotalXP)
		return err
	})
	require.NoError(t, err)
}

func TestGrantMultiplierSameKindRefreshes(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "UTC")

	require.NoError(t, GrantMultiplier(db, user.ID, models.GrantWelcomeBack, 1.5, wednesday, 72*time.Hour))
	require.NoError(t, GrantMultiplier(db, user.ID, models.GrantWelcomeBack, 1.5, wednesday.AddDate(0, 0, 1), 72*time.Hour))

	var n int64
	require.NoError(t, db.Model(&models.MultiplierGrant{}).Count(&n).Error)
	assert.EqualValues(t, 1, n, "same kind must refresh, not stack")

	var grant models.MultiplierGrant
	require.NoError(t, db.First(&grant).Error)
	assert.Equal(t, wednesday.AddDate(0, 0, 1).Add(72*time.Hour).Unix(), grant.ValidUntil.Unix())
}

func TestActiveGrantsExcludesExpired(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "UTC")

	require.NoError(t, db.Create(&models.MultiplierGrant{
		UserID: user.ID, Kind: models.GrantWelcomeBack, Value: 1.5,
		ValidFrom: wednesday.AddDate(0, 0, -5), ValidUntil: wednesday.AddDate(0, 0, -2),
	}).Error)
	require.NoError(t, db.Create(&models.MultiplierGrant{
		UserID: user.ID, Kind: models.GrantPerfectWeek, Value: 1.3,
		ValidFrom: wednesday.AddDate(0, 0, -1), ValidUntil: wednesday.AddDate(0, 0, 6),
	}).Error)

	grants, err := ActiveGrants(db, user.ID, wednesday)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, models.GrantPerfectWeek, grants[0].Kind)
}
