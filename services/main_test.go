package services

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/habitloop/habitloop/config"
	"github.com/habitloop/habitloop/models"
	"github.com/habitloop/habitloop/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	utils.Logger = zap.NewNop()
	utils.Sugar = utils.Logger.Sugar()
	cooldownFastPath = func(userID, goalID uint, window time.Duration) bool { return false }
	cooldownClear = func(userID, goalID uint) {}
	os.Exit(m.Run())
}

// newTestDB opens an isolated in-memory database per test. A single
// connection is forced so the shared-cache memory DB is not duplicated
// across pool connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Goal{},
		&models.CheckEvent{},
		&models.Achievement{},
		&models.UnlockRecord{},
		&models.UnlockHistory{},
		&models.MultiplierGrant{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig() config.AppConfig {
	return config.AppConfig{
		DefaultTimezone:        "UTC",
		WeekStart:              "monday",
		CheckXPBase:            10,
		CheckDailyCap:          3,
		CheckMinSpacingSec:     10,
		WeekendBonusValue:      1.2,
		WelcomeBackGapDays:     7,
		WelcomeBackValue:       1.5,
		WelcomeBackWindowHours: 72,
		MilestoneInterval:      5,
		MilestoneValue:         1.25,
		MilestoneWindowHours:   48,
		PerfectWeekThreshold:   0.9,
		PerfectWeekValue:       1.3,
		PerfectWeekWindowHours: 168,
	}
}

func seedUser(t *testing.T, db *gorm.DB, tz string) models.User {
	t.Helper()
	user := models.User{Username: "casey", Timezone: tz}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedGoal(t *testing.T, db *gorm.DB, userID uint, freq string) models.Goal {
	t.Helper()
	goal := models.Goal{UserID: userID, Title: "morning run", Frequency: freq, Active: true}
	if err := db.Create(&goal).Error; err != nil {
		t.Fatalf("seed goal: %v", err)
	}
	return goal
}

func seedEvent(t *testing.T, db *gorm.DB, userID, goalID uint, at time.Time) {
	t.Helper()
	ev := models.CheckEvent{UserID: userID, GoalID: goalID, OccurredAt: at.UTC()}
	if err := db.Create(&ev).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
}
