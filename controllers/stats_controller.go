package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitloop/habitloop/config"
	"github.com/habitloop/habitloop/engine"
	"github.com/habitloop/habitloop/middleware"
	"github.com/habitloop/habitloop/models"
	"github.com/habitloop/habitloop/services"
	"github.com/habitloop/habitloop/utils"
)

const statsCacheTTL = 5 * time.Minute

// StatsController exposes the analytics surface: streaks, levels, progress,
// multipliers and period resolution.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

func (s *StatsController) loadUser(ctx *gin.Context) (models.User, bool) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return user, false
	}
	return user, true
}

// Overview returns the full derived snapshot in one call. Responses are
// cached per user and invalidated on every check mutation.
func (s *StatsController) Overview(ctx *gin.Context) {
	user, ok := s.loadUser(ctx)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("stats:%d:overview", user.ID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	cfg := config.Get()
	now := time.Now()

	agg, err := services.BuildAggregates(s.db, cfg, user, now)
	if err != nil {
		s.statsError(ctx, err)
		return
	}

	loc, err := engine.LoadTimezone(services.UserTimezone(user, cfg))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid timezone")
		return
	}
	multiplier, err := services.EffectiveMultiplier(s.db, cfg, user.ID, loc, now)
	if err != nil {
		s.statsError(ctx, err)
		return
	}

	payload := gin.H{
		"aggregates": agg,
		"level":      engine.ProgressWithinLevel(user.TotalXP),
		"multiplier": multiplier,
		"total_xp":   user.TotalXP,
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, statsCacheTTL)
	utils.Success(ctx, payload)
}

// Streak returns the current and longest consecutive-day streaks.
func (s *StatsController) Streak(ctx *gin.Context) {
	user, ok := s.loadUser(ctx)
	if !ok {
		return
	}
	cfg := config.Get()

	loc, err := engine.LoadTimezone(services.UserTimezone(user, cfg))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid timezone")
		return
	}

	var events []models.CheckEvent
	if err := s.db.Where("user_id = ?", user.ID).Find(&events).Error; err != nil {
		s.statsError(ctx, err)
		return
	}
	times := make([]time.Time, 0, len(events))
	for _, e := range events {
		times = append(times, e.OccurredAt)
	}

	now := time.Now()
	days := engine.DistinctLocalDays(times, loc)
	utils.Success(ctx, engine.ComputeStreak(days, engine.LocalDay(now, loc)))
}

// Level returns the XP staircase position.
func (s *StatsController) Level(ctx *gin.Context) {
	user, ok := s.loadUser(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{
		"total_xp": user.TotalXP,
		"level":    engine.ProgressWithinLevel(user.TotalXP),
	})
}

// Multipliers lists active grants and the combined effective value.
func (s *StatsController) Multipliers(ctx *gin.Context) {
	user, ok := s.loadUser(ctx)
	if !ok {
		return
	}
	cfg := config.Get()
	now := time.Now()

	loc, err := engine.LoadTimezone(services.UserTimezone(user, cfg))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid timezone")
		return
	}

	grants, err := services.ActiveGrants(s.db, user.ID, now)
	if err != nil {
		s.statsError(ctx, err)
		return
	}
	combined, err := services.EffectiveMultiplier(s.db, cfg, user.ID, loc, now)
	if err != nil {
		s.statsError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"grants":   grants,
		"weekend":  engine.IsWeekend(now, loc),
		"combined": combined,
	})
}

// Progress returns per-goal progress in the current period of each goal.
func (s *StatsController) Progress(ctx *gin.Context) {
	user, ok := s.loadUser(ctx)
	if !ok {
		return
	}
	cfg := config.Get()
	tz := services.UserTimezone(user, cfg)
	now := time.Now()

	var goals []models.Goal
	if err := s.db.Where("user_id = ? AND active = ?", user.ID, true).Find(&goals).Error; err != nil {
		s.statsError(ctx, err)
		return
	}

	items := make([]gin.H, 0, len(goals))
	for _, goal := range goals {
		var events []models.CheckEvent
		if err := s.db.Where("goal_id = ?", goal.ID).Find(&events).Error; err != nil {
			s.statsError(ctx, err)
			return
		}
		times := make([]time.Time, 0, len(events))
		for _, e := range events {
			times = append(times, e.OccurredAt)
		}

		progress, err := engine.GoalProgress(goal.Policy(), times, now, tz, cfg.WeekStartDay())
		if err != nil {
			if errors.Is(err, engine.ErrInvalidTimezone) {
				utils.Error(ctx, http.StatusBadRequest, 40022, "invalid timezone")
				return
			}
			s.statsError(ctx, err)
			return
		}
		items = append(items, gin.H{
			"goal_id":  goal.ID,
			"title":    goal.Title,
			"progress": progress,
		})
	}

	utils.Success(ctx, gin.H{"items": items})
}

// GoalProgress returns one goal's progress in its current period.
func (s *StatsController) GoalProgress(ctx *gin.Context) {
	user, ok := s.loadUser(ctx)
	if !ok {
		return
	}
	cfg := config.Get()

	var goal models.Goal
	if err := s.db.Where("id = ? AND user_id = ?", ctx.Param("id"), user.ID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "goal not found")
			return
		}
		s.statsError(ctx, err)
		return
	}

	var events []models.CheckEvent
	if err := s.db.Where("goal_id = ?", goal.ID).Find(&events).Error; err != nil {
		s.statsError(ctx, err)
		return
	}
	times := make([]time.Time, 0, len(events))
	for _, e := range events {
		times = append(times, e.OccurredAt)
	}

	progress, err := engine.GoalProgress(goal.Policy(), times, time.Now(), services.UserTimezone(user, cfg), cfg.WeekStartDay())
	if err != nil {
		s.statsError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"goal_id":  goal.ID,
		"title":    goal.Title,
		"progress": progress,
	})
}

// ResolvePeriod computes the half-open window containing a calendar date.
// Defaults: today, day granularity, the user's timezone.
func (s *StatsController) ResolvePeriod(ctx *gin.Context) {
	user, ok := s.loadUser(ctx)
	if !ok {
		return
	}
	cfg := config.Get()

	tz := ctx.DefaultQuery("tz", services.UserTimezone(user, cfg))
	kind := engine.PeriodKind(ctx.DefaultQuery("kind", string(engine.PeriodDay)))
	if kind != engine.PeriodDay && kind != engine.PeriodWeek && kind != engine.PeriodMonth {
		utils.Error(ctx, http.StatusBadRequest, 40023, "kind must be day, week or month")
		return
	}

	date := ctx.Query("date")
	var window engine.Window
	var err error
	if date == "" {
		window, err = engine.WindowAt(time.Now(), tz, kind, cfg.WeekStartDay())
	} else {
		window, err = engine.ResolveWindow(date, tz, kind, cfg.WeekStartDay())
	}
	if err != nil {
		if errors.Is(err, engine.ErrInvalidTimezone) {
			utils.Error(ctx, http.StatusBadRequest, 40022, "invalid timezone")
			return
		}
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid date")
		return
	}

	utils.Success(ctx, window)
}

func (s *StatsController) statsError(ctx *gin.Context, err error) {
	if errors.Is(err, engine.ErrInvalidTimezone) {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid timezone")
		return
	}
	utils.Sugar.Errorw("stats computation failed", "err", err)
	utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to compute stats")
}
