package models

import "gorm.io/gorm"

// A named measurement (gram, large, slice, ...). Created lazily on first use.
type Unit struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// A base food item. Created lazily on first use.
type Ingredient struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// NutritionRate holds macros per exactly ONE unit of one ingredient.
// Downstream code multiplies by IngredientQuantity.Quantity for absolute
// values; absolute figures are never stored as the rate.
type NutritionRate struct {
	gorm.Model
	IngredientID uint    `gorm:"uniqueIndex:idx_rate_pair;not null" json:"ingredient_id"`
	UnitID       uint    `gorm:"uniqueIndex:idx_rate_pair;not null" json:"unit_id"`
	Kcal         float64 `json:"kcal"`
	Fat          float64 `json:"fat"`
	Carb         float64 `json:"carb"`
	Fiber        float64 `json:"fiber"`
	NetCarb      float64 `json:"net_carb"`
	Protein      float64 `json:"protein"`
}

// IngredientQuantity is a concrete amount of an ingredient in a unit,
// content-addressed: identical (quantity, ingredient, unit) triples resolve
// to the same row. Referenced, never mutated, by consumption and recipes.
type IngredientQuantity struct {
	gorm.Model
	Quantity     float64 `gorm:"uniqueIndex:idx_iq_triple;not null" json:"quantity"`
	IngredientID uint    `gorm:"uniqueIndex:idx_iq_triple;not null" json:"ingredient_id"`
	UnitID       uint    `gorm:"uniqueIndex:idx_iq_triple;not null" json:"unit_id"`
}

// Favorite is boolean membership over ingredients.
type Favorite struct {
	gorm.Model
	IngredientID uint `gorm:"uniqueIndex;not null" json:"ingredient_id"`
}
