package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitloop/habitloop/config"
	"github.com/habitloop/habitloop/middleware"
	"github.com/habitloop/habitloop/models"
	"github.com/habitloop/habitloop/services"
	"github.com/habitloop/habitloop/utils"
)

// AchievementController serves the badge catalog and the unlock ledger.
type AchievementController struct {
	db *gorm.DB
}

// NewAchievementController creates a new AchievementController instance.
func NewAchievementController(db *gorm.DB) *AchievementController {
	return &AchievementController{db: db}
}

// Catalog lists every achievement definition.
func (a *AchievementController) Catalog(ctx *gin.Context) {
	var catalog []models.Achievement
	if err := a.db.Order("id ASC").Find(&catalog).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list achievements")
		return
	}
	utils.Success(ctx, gin.H{"items": catalog})
}

// Mine lists the user's active unlocks.
func (a *AchievementController) Mine(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)

	unlocks, err := services.ActiveUnlocks(a.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to list unlocks")
		return
	}
	utils.Success(ctx, gin.H{"items": unlocks})
}

// History lists archived completions of repeatable badges, newest first.
func (a *AchievementController) History(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)

	var rows []models.UnlockHistory
	if err := a.db.Where("user_id = ?", userID).
		Order("reset_period DESC, repeat_count DESC").
		Find(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to list history")
		return
	}
	utils.Success(ctx, gin.H{"items": rows})
}

// Evaluate runs the catalog against the user's current aggregates on demand.
// Checks already trigger this; the endpoint exists for clients that want to
// refresh after profile or goal edits.
func (a *AchievementController) Evaluate(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)

	unlocked, err := services.EvaluateAndUnlock(a.db, config.Get(), userID, time.Now())
	if err != nil {
		utils.Sugar.Errorw("achievement evaluation failed", "user_id", userID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to evaluate achievements")
		return
	}
	utils.Success(ctx, gin.H{"unlocked": unlocked})
}

// AdminReset triggers the monthly badge rollover immediately. Restricted to
// configured admins; the sweep stays idempotent per month.
func (a *AchievementController) AdminReset(ctx *gin.Context) {
	username := ctx.GetString(middleware.ContextUsernameKey)
	if !isAdmin(username) {
		utils.Error(ctx, http.StatusForbidden, 40301, "admin only")
		return
	}

	sum, err := services.ResetMonthlyBadges(a.db, time.Now())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to reset badges")
		return
	}
	utils.Success(ctx, sum)
}
