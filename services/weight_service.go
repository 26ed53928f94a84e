// services/weight_service.go
package services

import (
	"errors"
	"sort"

	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

// WeightService tracks daily body weight and manually logged calorie
// figures. One row per canonical day; a second log for the same day is
// ignored, the first value wins.
type WeightService struct {
	db *gorm.DB
}

func NewWeightService(db *gorm.DB) *WeightService {
	return &WeightService{db: db}
}

// AddWeight records a weight for the day. Returns false when the day was
// already logged.
func (s *WeightService) AddWeight(date string, weight float64) (bool, error) {
	if date == "" {
		date = utils.Today()
	}
	day, err := utils.NormalizeDay(date)
	if err != nil {
		return false, err
	}
	if weight <= 0 {
		return false, ErrInvalidQuantity
	}

	var existing models.BodyWeight
	err = s.db.Where("date = ?", day).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	row := models.BodyWeight{Date: day, Weight: weight}
	if createErr := s.db.Create(&row).Error; createErr != nil {
		if s.db.Where("date = ?", day).First(&existing).Error == nil {
			return false, nil
		}
		return false, createErr
	}
	return true, nil
}

// AddCalories records a manually logged calorie figure for the day.
// total, when given, is the burned-total companion figure.
func (s *WeightService) AddCalories(date string, calories float64, total *float64) (bool, error) {
	if date == "" {
		date = utils.Today()
	}
	day, err := utils.NormalizeDay(date)
	if err != nil {
		return false, err
	}
	if calories < 0 {
		return false, ErrInvalidQuantity
	}

	var existing models.CalorieEntry
	err = s.db.Where("date = ?", day).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	row := models.CalorieEntry{Date: day, Calories: calories, TotalCalories: total}
	if createErr := s.db.Create(&row).Error; createErr != nil {
		if s.db.Where("date = ?", day).First(&existing).Error == nil {
			return false, nil
		}
		return false, createErr
	}
	return true, nil
}

// Weights returns every logged weight in chronological order.
func (s *WeightService) Weights() ([]models.BodyWeight, error) {
	var rows []models.BodyWeight
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	sortByDay(rows, func(w models.BodyWeight) string { return w.Date })
	return rows, nil
}

// Calories returns every logged calorie entry in chronological order.
func (s *WeightService) Calories() ([]models.CalorieEntry, error) {
	var rows []models.CalorieEntry
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	sortByDay(rows, func(c models.CalorieEntry) string { return c.Date })
	return rows, nil
}

// DeleteWeight removes one logged weight.
func (s *WeightService) DeleteWeight(id uint) error {
	res := s.db.Unscoped().Delete(&models.BodyWeight{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func sortByDay[T any](rows []T, date func(T) string) {
	sort.SliceStable(rows, func(i, j int) bool {
		di, erri := utils.ParseDay(date(rows[i]))
		dj, errj := utils.ParseDay(date(rows[j]))
		if erri != nil || errj != nil {
			return date(rows[i]) < date(rows[j])
		}
		return di.Before(dj)
	})
}
