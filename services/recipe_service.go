// services/recipe_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

// AddMode selects how a recipe lands in a meal. The two behaviors are
// deliberately distinct: callers must choose one, there is no default.
type AddMode string

const (
	// AsRecipeItem records one RecipeConsumption row carrying a servings
	// count, without touching the ingredient ledger.
	AsRecipeItem AddMode = "recipe_item"
	// AsExpandedIngredients scales every linked quantity by the servings
	// consumed and records each one through the consumption ledger.
	AsExpandedIngredients AddMode = "expanded"
)

// RecipeService bundles batches of quantity rows into named, dated,
// serving-scaled recipes and records recipe servings as meal items.
type RecipeService struct {
	db      *gorm.DB
	foods   *FoodService
	meals   *MealService
	catalog *CatalogService
	metrics *utils.Metrics
}

func NewRecipeService(db *gorm.DB, foods *FoodService, meals *MealService, catalog *CatalogService, m *utils.Metrics) *RecipeService {
	return &RecipeService{db: db, foods: foods, meals: meals, catalog: catalog, metrics: m}
}

// BatchResult reports per-row isolation of a batch save: one bad entry is
// rejected and counted, the rest of the batch goes through.
type BatchResult struct {
	QuantityIDs []uint `json:"quantity_ids"`
	Accepted    int    `json:"accepted"`
	Rejected    int    `json:"rejected"`
}

// RecipeRow is the listing projection: recipe fields plus absolute nutrition
// summed over linked quantities (rate × quantity). Nil sums mean every
// linked rate is gone.
type RecipeRow struct {
	ID       uint     `json:"recipe_id"`
	Name     string   `json:"recipe_name"`
	Date     string   `json:"date"`
	Servings int      `json:"servings"`
	Kcal     *float64 `json:"kcal"`
	Fat      *float64 `json:"fat"`
	Carb     *float64 `json:"carb"`
	Fiber    *float64 `json:"fiber"`
	NetCarb  *float64 `json:"net_carb"`
	Protein  *float64 `json:"protein"`
}

// CreateRecipe saves each entry through the normalization pipeline scaled
// down by servings, then links the resulting quantity rows to a recipe
// named uniquely. An existing recipe of the same name gains the new links.
func (s *RecipeService) CreateRecipe(name, date string, servings int, entries []FoodEntry) (*BatchResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("recipe name is required")
	}
	if servings < 1 {
		servings = 1
	}
	day, err := utils.NormalizeDay(date)
	if err != nil {
		day = utils.Today()
	}

	result := &BatchResult{}
	for _, entry := range entries {
		iqID, err := s.foods.SaveFood(entry, float64(servings))
		if err != nil {
			result.Rejected++
			continue
		}
		result.QuantityIDs = append(result.QuantityIDs, iqID)
		result.Accepted++
	}
	if result.Accepted == 0 {
		return result, fmt.Errorf("%w: no recipe entry could be saved", ErrMalformedRow)
	}

	recipeID, err := s.getOrCreateRecipe(name, day, servings)
	if err != nil {
		return result, err
	}
	for _, iqID := range result.QuantityIDs {
		link := models.RecipeIngredient{RecipeID: recipeID, IngredientQuantityID: iqID}
		if err := s.db.Create(&link).Error; err != nil {
			return result, err
		}
	}
	return result, nil
}

func (s *RecipeService) getOrCreateRecipe(name, day string, servings int) (uint, error) {
	var r models.Recipe
	err := s.db.Where("name = ?", name).First(&r).Error
	if err == nil {
		return r.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	r = models.Recipe{Name: name, Date: day, Servings: servings}
	if createErr := s.db.Create(&r).Error; createErr != nil {
		if lookupErr := s.db.Where("name = ?", name).First(&r).Error; lookupErr == nil {
			return r.ID, nil
		}
		return 0, createErr
	}
	return r.ID, nil
}

const recipeProjection = `
	r.id AS id,
	r.name AS name,
	r.date AS date,
	r.servings AS servings,
	round(sum(n.kcal * iq.quantity), 2) AS kcal,
	round(sum(n.fat * iq.quantity), 2) AS fat,
	round(sum(n.carb * iq.quantity), 2) AS carb,
	round(sum(n.fiber * iq.quantity), 2) AS fiber,
	round(sum(n.net_carb * iq.quantity), 2) AS net_carb,
	round(sum(n.protein * iq.quantity), 2) AS protein`

func (s *RecipeService) recipeQuery() *gorm.DB {
	return s.db.
		Table("recipes AS r").
		Joins("LEFT JOIN recipe_ingredients AS ri ON ri.recipe_id = r.id AND ri.deleted_at IS NULL").
		Joins("LEFT JOIN ingredient_quantities AS iq ON iq.id = ri.ingredient_quantity_id AND iq.deleted_at IS NULL").
		Joins("LEFT JOIN nutrition_rates AS n ON n.ingredient_id = iq.ingredient_id AND n.unit_id = iq.unit_id AND n.deleted_at IS NULL").
		Where("r.deleted_at IS NULL").
		Group("r.id, r.name, r.date, r.servings")
}

// ListRecipes returns every recipe with its summed absolute nutrition.
func (s *RecipeService) ListRecipes() ([]RecipeRow, error) {
	var rows []RecipeRow
	err := s.recipeQuery().
		Select(recipeProjection).
		Order("r.id ASC").
		Scan(&rows).Error
	return rows, err
}

// RecipeDetail is a recipe with its ingredient projections and per-serving
// figures (total ÷ servings).
type RecipeDetail struct {
	Recipe      RecipeRow   `json:"recipe"`
	Ingredients []FoodRow   `json:"ingredients"`
	PerServing  MacroTotals `json:"per_serving"`
	UsageCount  int64       `json:"usage_count"`
}

func (s *RecipeService) RecipeDetail(recipeID uint) (*RecipeDetail, error) {
	var rows []RecipeRow
	err := s.recipeQuery().
		Select(recipeProjection).
		Where("r.id = ?", recipeID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: recipe %d", ErrNotFound, recipeID)
	}
	recipe := rows[0]

	iqIDs, err := s.RecipeIngredientIDs(recipeID)
	if err != nil {
		return nil, err
	}
	ingredients := make([]FoodRow, 0, len(iqIDs))
	for _, iqID := range iqIDs {
		row, err := s.foods.GetFood(iqID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // dangling link, skip in detail
			}
			return nil, err
		}
		ingredients = append(ingredients, *row)
	}

	detail := &RecipeDetail{Recipe: recipe, Ingredients: ingredients}
	div := float64(recipe.Servings)
	if div <= 0 {
		div = 1
	}
	if recipe.Kcal != nil {
		detail.PerServing.Calories = round1(*recipe.Kcal / div)
	}
	if recipe.Protein != nil {
		detail.PerServing.Protein = round1(*recipe.Protein / div)
	}
	if recipe.Carb != nil {
		detail.PerServing.Carbs = round1(*recipe.Carb / div)
	}
	if recipe.Fat != nil {
		detail.PerServing.Fat = round1(*recipe.Fat / div)
	}

	usage, err := s.RecipeUsageCount(recipeID)
	if err != nil {
		return nil, err
	}
	detail.UsageCount = usage
	return detail, nil
}

// RecipeIngredientIDs lists the quantity ids linked to a recipe.
func (s *RecipeService) RecipeIngredientIDs(recipeID uint) ([]uint, error) {
	var links []models.RecipeIngredient
	if err := s.db.Where("recipe_id = ?", recipeID).Find(&links).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.IngredientQuantityID)
	}
	return ids, nil
}

// RecipeUsageCount counts meal entries recorded against the recipe.
func (s *RecipeService) RecipeUsageCount(recipeID uint) (int64, error) {
	var n int64
	err := s.db.Model(&models.RecipeConsumption{}).Where("recipe_id = ?", recipeID).Count(&n).Error
	return n, err
}

// DeleteRecipe removes the recipe and its ingredient links. Consumption
// history referencing the recipe is kept and degrades in the joined views.
func (s *RecipeService) DeleteRecipe(recipeID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Delete(&models.Recipe{}, recipeID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: recipe %d", ErrNotFound, recipeID)
		}
		return nil
	})
}

// UpdateRecipe rebuilds a recipe's ingredient links from fresh entries.
// With asVariation set it instead creates a new recipe under a uniquely
// suffixed name and leaves the original untouched.
func (s *RecipeService) UpdateRecipe(recipeID uint, name string, servings int, entries []FoodEntry, asVariation bool) (*BatchResult, error) {
	if asVariation {
		variation, err := s.variationName(name)
		if err != nil {
			return nil, err
		}
		return s.CreateRecipe(variation, utils.Today(), servings, entries)
	}

	var recipe models.Recipe
	if err := s.db.First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recipe %d", ErrNotFound, recipeID)
		}
		return nil, err
	}

	result := &BatchResult{}
	for _, entry := range entries {
		iqID, err := s.foods.SaveFood(entry, float64(max(servings, 1)))
		if err != nil {
			result.Rejected++
			continue
		}
		result.QuantityIDs = append(result.QuantityIDs, iqID)
		result.Accepted++
	}
	if result.Accepted == 0 {
		return result, fmt.Errorf("%w: no recipe entry could be saved", ErrMalformedRow)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		recipe.Name = strings.TrimSpace(name)
		if servings >= 1 {
			recipe.Servings = servings
		}
		if err := tx.Save(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		for _, iqID := range result.QuantityIDs {
			link := models.RecipeIngredient{RecipeID: recipeID, IngredientQuantityID: iqID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

func (s *RecipeService) variationName(base string) (string, error) {
	var recipes []models.Recipe
	if err := s.db.Find(&recipes).Error; err != nil {
		return "", err
	}
	existing := make(map[string]bool, len(recipes))
	for _, r := range recipes {
		existing[strings.ToLower(r.Name)] = true
	}
	for i := 2; i < 100; i++ {
		candidate := fmt.Sprintf("%s (v%d)", base, i)
		if !existing[strings.ToLower(candidate)] {
			return candidate, nil
		}
	}
	return fmt.Sprintf("%s (var_%s)", base, time.Now().Format("20060102_150405")), nil
}

// AddRecipeToMeal records servings of a recipe against a date and meal type
// in the explicitly chosen mode.
func (s *RecipeService) AddRecipeToMeal(recipeID uint, mealType string, servings float64, date string, mode AddMode) error {
	if date == "" {
		date = utils.Today()
	}
	day, err := utils.NormalizeDay(date)
	if err != nil {
		return err
	}
	if mealType == "" {
		mealType = models.MealOther
	}
	if servings <= 0 {
		servings = 1
	}

	var recipe models.Recipe
	if err := s.db.First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: recipe %d", ErrNotFound, recipeID)
		}
		return err
	}

	switch mode {
	case AsRecipeItem:
		return s.upsertRecipeConsumption(recipeID, day, mealType, servings)
	case AsExpandedIngredients:
		iqIDs, err := s.RecipeIngredientIDs(recipeID)
		if err != nil {
			return err
		}
		for _, iqID := range iqIDs {
			var iq models.IngredientQuantity
			if err := s.db.First(&iq, iqID).Error; err != nil {
				continue // dangling link, skip
			}
			scaledIQ, err := s.catalog.GetOrCreateQuantity(iq.Quantity*servings, iq.IngredientID, iq.UnitID)
			if err != nil {
				return err
			}
			if _, _, err := s.meals.RecordConsumption(day, scaledIQ, mealType); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("add mode must be %q or %q", AsRecipeItem, AsExpandedIngredients)
	}
}

// one row per (recipe, date, meal); re-adding replaces the servings count
func (s *RecipeService) upsertRecipeConsumption(recipeID uint, day, mealType string, servings float64) error {
	var rc models.RecipeConsumption
	err := s.db.
		Where("recipe_id = ? AND date = ? AND meal_type = ?", recipeID, day, mealType).
		First(&rc).Error
	switch {
	case err == nil:
		rc.Servings = servings
		return s.db.Save(&rc).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		rc = models.RecipeConsumption{RecipeID: recipeID, Date: day, MealType: mealType, Servings: servings}
		if createErr := s.db.Create(&rc).Error; createErr != nil {
			if s.db.
				Where("recipe_id = ? AND date = ? AND meal_type = ?", recipeID, day, mealType).
				First(&rc).Error == nil {
				rc.Servings = servings
				return s.db.Save(&rc).Error
			}
			return createErr
		}
		return nil
	default:
		return err
	}
}

// DeleteRecipeConsumption removes one recipe meal entry.
func (s *RecipeService) DeleteRecipeConsumption(id uint) error {
	res := s.db.Unscoped().Delete(&models.RecipeConsumption{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: recipe consumption %d", ErrNotFound, id)
	}
	return nil
}

// RecipeConsumptionRow is the joined single-recipe meal entry projection.
// Macros are the recipe totals scaled by servings consumed over recipe
// servings; nil when every linked rate is gone.
type RecipeConsumptionRow struct {
	ID             uint     `json:"recipe_consumption_id"`
	RecipeID       uint     `json:"recipe_id"`
	Date           string   `json:"date"`
	MealType       string   `json:"meal_type"`
	Servings       float64  `json:"servings"`
	RecipeName     string   `json:"recipe_name"`
	RecipeServings int      `json:"recipe_servings"`
	Kcal           *float64 `json:"kcal"`
	Fat            *float64 `json:"fat"`
	Carb           *float64 `json:"carb"`
	Protein        *float64 `json:"protein"`
}

// RecipeConsumptionFor lists recipe meal entries, optionally for one
// canonical day (empty day means all).
func (s *RecipeService) RecipeConsumptionFor(day string) ([]RecipeConsumptionRow, error) {
	return fetchRecipeConsumption(s.db, day)
}

func fetchRecipeConsumption(db *gorm.DB, day string) ([]RecipeConsumptionRow, error) {
	q := db.
		Table("recipe_consumptions AS rc").
		Joins("JOIN recipes AS r ON r.id = rc.recipe_id AND r.deleted_at IS NULL").
		Joins("LEFT JOIN recipe_ingredients AS ri ON ri.recipe_id = r.id AND ri.deleted_at IS NULL").
		Joins("LEFT JOIN ingredient_quantities AS iq ON iq.id = ri.ingredient_quantity_id AND iq.deleted_at IS NULL").
		Joins("LEFT JOIN nutrition_rates AS n ON n.ingredient_id = iq.ingredient_id AND n.unit_id = iq.unit_id AND n.deleted_at IS NULL").
		Where("rc.deleted_at IS NULL").
		Group("rc.id, rc.recipe_id, rc.date, rc.meal_type, rc.servings, r.name, r.servings")
	if day != "" {
		q = q.Where("rc.date = ?", day)
	}

	var rows []RecipeConsumptionRow
	err := q.Select(`
		rc.id AS id,
		rc.recipe_id AS recipe_id,
		rc.date AS date,
		rc.meal_type AS meal_type,
		rc.servings AS servings,
		r.name AS recipe_name,
		r.servings AS recipe_servings,
		round(sum(n.kcal * iq.quantity) * rc.servings / r.servings, 2) AS kcal,
		round(sum(n.fat * iq.quantity) * rc.servings / r.servings, 2) AS fat,
		round(sum(n.carb * iq.quantity) * rc.servings / r.servings, 2) AS carb,
		round(sum(n.protein * iq.quantity) * rc.servings / r.servings, 2) AS protein`).
		Scan(&rows).Error
	return rows, err
}
