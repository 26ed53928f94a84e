package models

import "gorm.io/gorm"

// Recipe is a named, dated bundle of ingredient quantities with a serving
// count. Its absolute nutrition is the sum over linked quantities of
// rate × quantity; per-serving is that sum divided by Servings.
type Recipe struct {
	gorm.Model
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	Date     string `gorm:"not null" json:"date"` // canonical DD.MM.YYYY
	Servings int    `gorm:"not null;default:1" json:"servings"`
}

// RecipeIngredient links a recipe to one of its ingredient quantities.
// Order is irrelevant.
type RecipeIngredient struct {
	gorm.Model
	RecipeID             uint `gorm:"index;not null" json:"recipe_id"`
	IngredientQuantityID uint `gorm:"not null" json:"ingredient_quantity_id"`
}
