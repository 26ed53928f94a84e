package models

import "gorm.io/gorm"

// BodyWeight is one weigh-in per calendar day (canonical DD.MM.YYYY).
type BodyWeight struct {
	gorm.Model
	Date   string  `gorm:"uniqueIndex;not null" json:"date"`
	Weight float64 `gorm:"not null" json:"weight"`
}

// CalorieEntry is one burned-calories record per calendar day. Active
// calories come from exercise; TotalCalories, when present, is the full
// daily expenditure.
type CalorieEntry struct {
	gorm.Model
	Date          string   `gorm:"uniqueIndex;not null" json:"date"`
	Calories      float64  `gorm:"not null" json:"calories"`
	TotalCalories *float64 `json:"total_calories"`
}
