package config

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/habitloop/habitloop/models"
)

// DB is the shared database handle.
var DB *gorm.DB

// ConnectDatabase opens the MySQL connection and runs automigrations.
func ConnectDatabase() {
	c := Get()

	dsn := c.DatabaseURI
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get generic database handle: %v", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Goal{},
		&models.CheckEvent{},
		&models.Achievement{},
		&models.UnlockRecord{},
		&models.UnlockHistory{},
		&models.MultiplierGrant{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	DB = db
}
