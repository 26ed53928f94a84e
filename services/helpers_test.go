package services

import (
	"fmt"
	"strings"
	"testing"

	"backend/config"
	"backend/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type fixture struct {
	db        *gorm.DB
	catalog   *CatalogService
	foods     *FoodService
	meals     *MealService
	recipes   *RecipeService
	analytics *AnalyticsService
	weights   *WeightService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	m := utils.NewMetrics()
	catalog := NewCatalogService(db)
	foods := NewFoodService(db, catalog, nil, m)
	meals := NewMealService(db, catalog, m)
	recipes := NewRecipeService(db, foods, meals, catalog, m)
	return &fixture{
		db:        db,
		catalog:   catalog,
		foods:     foods,
		meals:     meals,
		recipes:   recipes,
		analytics: NewAnalyticsService(db, meals),
		weights:   NewWeightService(db),
	}
}

func chickenEntry() FoodEntry {
	return FoodEntry{
		Ingredient: "chicken breast",
		Unit:       "g",
		Qty:        100,
		Kcal:       200,
		Fat:        4,
		Carb:       0,
		Fiber:      0,
		NetCarb:    0,
		Protein:    40,
	}
}

func riceEntry() FoodEntry {
	return FoodEntry{
		Ingredient: "rice",
		Unit:       "g",
		Qty:        50,
		Kcal:       100,
		Fat:        0.5,
		Carb:       22,
		Fiber:      0.5,
		NetCarb:    21.5,
		Protein:    2,
	}
}

func f64(t *testing.T, v *float64) float64 {
	t.Helper()
	if v == nil {
		t.Fatalf("expected non-nil value")
	}
	return *v
}
