package services

import (
	"gorm.io/gorm"

	"github.com/habitloop/habitloop/engine"
	"github.com/habitloop/habitloop/models"
)

// defaultCatalog is the achievement set seeded on first boot. Keys are
// stable identifiers; rows are matched by key so redeploys never duplicate.
var defaultCatalog = []models.Achievement{
	{Key: "first_step", Name: "First Step", Description: "Record your first check", Icon: "👣",
		ConditionType: string(engine.CondTotalChecks), ConditionValue: 1, XPReward: 10},
	{Key: "getting_started", Name: "Getting Started", Description: "Keep a 3 day streak", Icon: "🌱",
		ConditionType: string(engine.CondStreak), ConditionValue: 3, XPReward: 25},
	{Key: "week_strong", Name: "Week Strong", Description: "Keep a 7 day streak", Icon: "🔥",
		ConditionType: string(engine.CondStreak), ConditionValue: 7, XPReward: 75},
	{Key: "monthly_master", Name: "Monthly Master", Description: "Keep a 30 day streak", Icon: "🏆",
		ConditionType: string(engine.CondStreak), ConditionValue: 30, XPReward: 300},
	{Key: "centurion", Name: "Centurion", Description: "Keep a 100 day streak", Icon: "💯",
		ConditionType: string(engine.CondStreak), ConditionValue: 100, XPReward: 1000},
	{Key: "half_century", Name: "Half Century", Description: "Record 50 checks in total", Icon: "✅",
		ConditionType: string(engine.CondTotalChecks), ConditionValue: 50, XPReward: 100},
	{Key: "dedicated", Name: "Dedicated", Description: "Record 500 checks in total", Icon: "🎯",
		ConditionType: string(engine.CondTotalChecks), ConditionValue: 500, XPReward: 500},
	{Key: "perfect_ten", Name: "Perfect Ten", Description: "Complete every daily goal on 10 days", Icon: "🌟",
		ConditionType: string(engine.CondPerfectDays), ConditionValue: 10, XPReward: 150},
	{Key: "consistency_champ", Name: "Consistency Champ", Description: "Hit 90% completion in 4 recent weeks", Icon: "📈",
		ConditionType: string(engine.CondPerfectWeeks), ConditionValue: 4, ConditionRatio: 0.9, XPReward: 250,
		BadgeType: models.BadgeMonthly, Repeatable: true, RepeatXPMultiplier: 0.5},
	{Key: "flawless_month", Name: "Flawless Month", Description: "Complete every daily goal every day for a month", Icon: "🗓️",
		ConditionType: string(engine.CondPerfectMonth), ConditionValue: 1, XPReward: 400,
		BadgeType: models.BadgeMonthly, Repeatable: true, RepeatXPMultiplier: 0.5},
	{Key: "early_bird", Name: "Early Bird", Description: "Do most of your checks in the morning", Icon: "🐦",
		ConditionType: string(engine.CondTimeOfDay), ConditionRatio: 0.8, XPReward: 120},
	{Key: "weekend_warrior", Name: "Weekend Warrior", Description: "Stay active through the weekends", Icon: "⚔️",
		ConditionType: string(engine.CondWeekendRatio), ConditionRatio: 0.6, XPReward: 120},
	{Key: "well_rounded", Name: "Well Rounded", Description: "Spread effort evenly across your goals", Icon: "⚖️",
		ConditionType: string(engine.CondBalance), ConditionRatio: 0.75, XPReward: 150},
}

// SeedAchievements inserts any missing catalog rows. Existing rows are left
// untouched so manual tuning in production survives restarts.
func SeedAchievements(db *gorm.DB) error {
	for _, a := range defaultCatalog {
		a := a
		if err := db.Where("`key` = ?", a.Key).FirstOrCreate(&a).Error; err != nil {
			return err
		}
	}
	return nil
}
