package models

import "gorm.io/gorm"

// Meal types accepted by the ledger.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnacks    = "snacks"
	MealOther     = "other"
)

// MealTypes in display order.
var MealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnacks, MealOther}

// Consumption is one calendar-day, meal-typed record of having eaten an
// IngredientQuantity. Date is the canonical DD.MM.YYYY form. Repeating the
// same (date, quantity, meal) entry increments Portions instead of adding a
// row; deleting the row removes the whole accumulated entry.
type Consumption struct {
	gorm.Model
	Date                 string `gorm:"uniqueIndex:idx_consumption_key;not null" json:"date"`
	IngredientQuantityID uint   `gorm:"uniqueIndex:idx_consumption_key;not null" json:"ingredient_quantity_id"`
	MealType             string `gorm:"uniqueIndex:idx_consumption_key;not null;default:other" json:"meal_type"`
	Portions             int    `gorm:"not null;default:1" json:"portions"`
}

// RecipeConsumption records eating N servings of a recipe on a date/meal
// without expanding it into ingredients. One row per (recipe, date, meal);
// a repeated insert replaces Servings.
type RecipeConsumption struct {
	gorm.Model
	RecipeID uint    `gorm:"uniqueIndex:idx_recipe_consumption_key;not null" json:"recipe_id"`
	Date     string  `gorm:"uniqueIndex:idx_recipe_consumption_key;not null" json:"date"`
	MealType string  `gorm:"uniqueIndex:idx_recipe_consumption_key;not null;default:other" json:"meal_type"`
	Servings float64 `gorm:"not null;default:1" json:"servings"`
}
