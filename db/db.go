package db

import (
	"log"
	"os"

	"gamestore/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=postgres dbname=gamestore password=postgres sslmode=disable"
	}

	var openErr error
	DB, openErr = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if openErr != nil {
		log.Fatal("failed to connect to the database:", openErr)
	}

	if migrateErr := Migrate(DB); migrateErr != nil {
		log.Fatal("failed to migrate:", migrateErr)
	}

	log.Println("Database connected and migrated")
}

// Migrate wires the explicit genre join entity and creates all tables.
// Shared with tests, which run it against sqlite.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.SetupJoinTable(&models.Game{}, "Genres", &models.GameGenre{}); err != nil {
		return err
	}
	if err := gdb.SetupJoinTable(&models.Genre{}, "Games", &models.GameGenre{}); err != nil {
		return err
	}
	return gdb.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.Genre{},
		&models.Client{},
		&models.Ownership{},
		&models.Comment{},
	)
}
