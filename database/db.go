package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tutorhub/config"
	"tutorhub/models"
)

// DB is the global gorm handle.
var DB *gorm.DB

// InitDB initializes the Postgres connection and runs migrations.
func InitDB() {
	db, err := gorm.Open(postgres.Open(config.AppConfig.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}
	if err := db.AutoMigrate(&models.BookingGroup{}, &models.BookingIDRecord{}); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	DB = db
	log.Println("Connected to Postgres successfully!")
}
