package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/habitloop/habitloop/utils"
)

const resetSweepInterval = 6 * time.Hour

// StartResetScheduler launches the background sweep that rolls repeatable
// monthly badges over. The sweep itself is idempotent per month, so the
// interval only bounds how late into a new month the rollover can land.
func StartResetScheduler(db *gorm.DB) {
	go func() {
		if _, err := ResetMonthlyBadges(db, time.Now()); err != nil {
			utils.Sugar.Errorf("initial badge reset sweep failed: %v", err)
		}

		ticker := time.NewTicker(resetSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := ResetMonthlyBadges(db, time.Now()); err != nil {
				utils.Sugar.Errorf("badge reset sweep failed: %v", err)
			}
		}
	}()
}
