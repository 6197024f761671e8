package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitloop/habitloop/config"
	"github.com/habitloop/habitloop/controllers"
	"github.com/habitloop/habitloop/middleware"
	"github.com/habitloop/habitloop/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file, separate from the app log
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	goalController := controllers.NewGoalController(db)
	checkController := controllers.NewCheckController(db)
	statsController := controllers.NewStatsController(db)
	achievementController := controllers.NewAchievementController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Catalog is public; everything personal sits behind auth.
	api.GET("/achievements", achievementController.Catalog)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/goals", goalController.Create)
	protected.GET("/goals", goalController.List)
	protected.GET("/goals/:id", goalController.Get)
	protected.PUT("/goals/:id", goalController.Update)
	protected.DELETE("/goals/:id", goalController.Delete)

	protected.POST("/goals/:id/checks", checkController.Check)
	protected.DELETE("/checks/:uid", checkController.Uncheck)
	protected.GET("/checks", checkController.ListRecent)

	protected.GET("/stats/overview", statsController.Overview)
	protected.GET("/stats/streak", statsController.Streak)
	protected.GET("/stats/level", statsController.Level)
	protected.GET("/stats/multipliers", statsController.Multipliers)
	protected.GET("/stats/progress", statsController.Progress)
	protected.GET("/goals/:id/progress", statsController.GoalProgress)
	protected.GET("/periods/resolve", statsController.ResolvePeriod)

	protected.GET("/achievements/mine", achievementController.Mine)
	protected.GET("/achievements/history", achievementController.History)
	protected.POST("/achievements/evaluate", achievementController.Evaluate)
	protected.POST("/admin/badges/reset", achievementController.AdminReset)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
