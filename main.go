package main

import (
	"github.com/habitloop/habitloop/config"
	"github.com/habitloop/habitloop/routes"
	"github.com/habitloop/habitloop/services"
	"github.com/habitloop/habitloop/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	config.ConnectDatabase()
	db := config.DB

	if err := services.SeedAchievements(db); err != nil {
		utils.Sugar.Fatalf("failed to seed achievement catalog: %v", err)
	}

	r := routes.SetupRouter(db)

	// Background rollover for repeatable monthly badges (idempotent per month)
	services.StartResetScheduler(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
