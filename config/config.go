package config

import (
	"fmt"
	"log"
	"os"

	"backend/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB opens the store selected by DB_DRIVER (sqlite is the default for a
// personal single-user install, mysql for a hosted one) and migrates the
// schema.
func InitDB() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, relying on environment")
	}

	var (
		db  *gorm.DB
		err error
	)
	switch os.Getenv("DB_DRIVER") {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
		)
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	default:
		path := os.Getenv("DATABASE_PATH")
		if path == "" {
			path = "database.db"
		}
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	DB = db
}

// Migrate applies the schema. Split out so tests can run it against an
// in-memory sqlite database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Unit{},
		&models.Ingredient{},
		&models.NutritionRate{},
		&models.IngredientQuantity{},
		&models.Favorite{},
		&models.Consumption{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeConsumption{},
		&models.BodyWeight{},
		&models.CalorieEntry{},
	)
}
