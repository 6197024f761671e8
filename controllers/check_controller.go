package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitloop/habitloop/config"
	"github.com/habitloop/habitloop/engine"
	"github.com/habitloop/habitloop/middleware"
	"github.com/habitloop/habitloop/services"
	"github.com/habitloop/habitloop/utils"
)

// CheckController records and removes check events.
type CheckController struct {
	db *gorm.DB
}

// NewCheckController creates a new CheckController instance.
func NewCheckController(db *gorm.DB) *CheckController {
	return &CheckController{db: db}
}

// Check records one check event for the goal and returns the full outcome:
// XP awarded, effective multiplier, level changes and any unlocked badges.
func (c *CheckController) Check(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)

	var goalID uint
	if err := bindID(ctx, "id", &goalID); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid goal id")
		return
	}

	result, err := services.CheckGoal(c.db, config.Get(), userID, goalID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrRateLimited):
			utils.Error(ctx, http.StatusTooManyRequests, 42910, "too many checks, slow down")
		case errors.Is(err, services.ErrGoalInactive):
			utils.Error(ctx, http.StatusBadRequest, 40041, "goal is inactive")
		case errors.Is(err, engine.ErrInvalidTimezone):
			utils.Error(ctx, http.StatusBadRequest, 40022, "invalid timezone")
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.Error(ctx, http.StatusNotFound, 40420, "goal not found")
		default:
			utils.Sugar.Errorw("check failed", "user_id", userID, "goal_id", goalID, "err", err)
			utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to record check")
		}
		return
	}

	utils.Success(ctx, result)
}

// Uncheck removes a check event by its public UID.
func (c *CheckController) Uncheck(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)
	uid := ctx.Param("uid")

	err := services.UncheckGoal(c.db, config.Get(), userID, uid, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrRateLimited):
			utils.Error(ctx, http.StatusTooManyRequests, 42910, "too soon to undo this check")
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.Error(ctx, http.StatusNotFound, 40421, "check not found")
		default:
			utils.Sugar.Errorw("uncheck failed", "user_id", userID, "uid", uid, "err", err)
			utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to remove check")
		}
		return
	}

	utils.Success(ctx, gin.H{"message": "removed"})
}

// ListRecent returns the user's latest check events.
func (c *CheckController) ListRecent(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)

	var events []struct {
		UID        string    `json:"uid"`
		GoalID     uint      `json:"goal_id"`
		OccurredAt time.Time `json:"occurred_at"`
	}
	if err := c.db.Table("check_events").
		Select("uid, goal_id, occurred_at").
		Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Limit(100).
		Scan(&events).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list checks")
		return
	}
	utils.Success(ctx, gin.H{"items": events})
}
