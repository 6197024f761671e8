package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitloop/habitloop/engine"
	"github.com/habitloop/habitloop/middleware"
	"github.com/habitloop/habitloop/models"
	"github.com/habitloop/habitloop/utils"
)

// GoalController manages the goal CRUD surface.
type GoalController struct {
	db *gorm.DB
}

// NewGoalController creates a new GoalController instance.
func NewGoalController(db *gorm.DB) *GoalController {
	return &GoalController{db: db}
}

var validFrequencies = map[string]bool{
	string(engine.FreqDaily):        true,
	string(engine.FreqWeeklyDays):   true,
	string(engine.FreqWeeklyCount):  true,
	string(engine.FreqMonthlyCount): true,
	string(engine.FreqUntracked):    true,
}

type goalRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Notes       string `json:"notes"`
	Frequency   string `json:"frequency" binding:"required"`
	WeekdayMask int    `json:"weekday_mask"`
	TargetCount int    `json:"target_count"`
}

// validate checks the frequency policy is internally consistent.
func (r goalRequest) validate() (int, string) {
	if !validFrequencies[r.Frequency] {
		return 40031, "unknown frequency"
	}
	switch engine.Frequency(r.Frequency) {
	case engine.FreqWeeklyDays:
		if r.WeekdayMask <= 0 || r.WeekdayMask > 0x7F {
			return 40032, "weekday_mask must select at least one weekday"
		}
	case engine.FreqWeeklyCount, engine.FreqMonthlyCount:
		if r.TargetCount < 1 {
			return 40033, "target_count must be at least 1"
		}
	}
	return 0, ""
}

// Create adds a goal for the authenticated user.
func (g *GoalController) Create(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)

	var req goalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	if code, msg := req.validate(); code != 0 {
		utils.Error(ctx, http.StatusBadRequest, code, msg)
		return
	}

	goal := models.Goal{
		UserID:      userID,
		Title:       utils.Sanitize(strings.TrimSpace(req.Title)),
		Notes:       utils.Sanitize(req.Notes),
		Frequency:   req.Frequency,
		WeekdayMask: req.WeekdayMask,
		TargetCount: req.TargetCount,
		Active:      true,
	}
	if goal.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40034, "title must not be empty")
		return
	}

	if err := g.db.Create(&goal).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to create goal")
		return
	}
	utils.Success(ctx, goal)
}

// List returns the user's goals, active first.
func (g *GoalController) List(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)

	var goals []models.Goal
	if err := g.db.Where("user_id = ?", userID).
		Order("active DESC, created_at ASC").
		Find(&goals).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to list goals")
		return
	}
	utils.Success(ctx, gin.H{"items": goals})
}

// Get returns one goal owned by the user.
func (g *GoalController) Get(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)

	var goal models.Goal
	if err := g.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "goal not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to get goal")
		return
	}
	utils.Success(ctx, goal)
}

// Update modifies a goal's policy. Past check events are untouched; progress
// and streaks simply re-evaluate under the new policy.
func (g *GoalController) Update(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)

	var goal models.Goal
	if err := g.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "goal not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to get goal")
		return
	}

	type request struct {
		Title       *string `json:"title"`
		Notes       *string `json:"notes"`
		Frequency   *string `json:"frequency"`
		WeekdayMask *int    `json:"weekday_mask"`
		TargetCount *int    `json:"target_count"`
		Active      *bool   `json:"active"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	if req.Title != nil {
		title := utils.Sanitize(strings.TrimSpace(*req.Title))
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40034, "title must not be empty")
			return
		}
		goal.Title = title
	}
	if req.Notes != nil {
		goal.Notes = utils.Sanitize(*req.Notes)
	}
	if req.Frequency != nil {
		goal.Frequency = *req.Frequency
	}
	if req.WeekdayMask != nil {
		goal.WeekdayMask = *req.WeekdayMask
	}
	if req.TargetCount != nil {
		goal.TargetCount = *req.TargetCount
	}
	if req.Active != nil {
		goal.Active = *req.Active
	}

	check := goalRequest{
		Title:       goal.Title,
		Frequency:   goal.Frequency,
		WeekdayMask: goal.WeekdayMask,
		TargetCount: goal.TargetCount,
	}
	if code, msg := check.validate(); code != 0 {
		utils.Error(ctx, http.StatusBadRequest, code, msg)
		return
	}

	if err := g.db.Save(&goal).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to update goal")
		return
	}
	utils.Success(ctx, goal)
}

// Delete soft-deletes a goal. Its check events stay in the log so historical
// aggregates keep their meaning.
func (g *GoalController) Delete(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)

	res := g.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).Delete(&models.Goal{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to delete goal")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40420, "goal not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "deleted"})
}
