package services

import (
	"errors"
	"fmt"
	"math"

	"backend/models"

	"gorm.io/gorm"
)

// CatalogService owns the unit/ingredient dictionaries, the content-addressed
// quantity registry and the per-unit nutrition rates. Lookup-then-insert is
// not atomic against concurrent writers; the design assumes a single active
// writer, and a duplicate insert attempt resolves to the existing row.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Rate carries nutrition per exactly one unit of one ingredient.
type Rate struct {
	Kcal    float64 `json:"kcal"`
	Fat     float64 `json:"fat"`
	Carb    float64 `json:"carb"`
	Fiber   float64 `json:"fiber"`
	NetCarb float64 `json:"net_carb"`
	Protein float64 `json:"protein"`
}

// NormalizeRate converts absolute macro values measured over qty units
// (spread across servings) into a per-single-unit rate, rounded to 4
// decimals. Feeding a rate back in with qty = servings = 1 returns it
// unchanged.
func NormalizeRate(qty, kcal, fat, carb, fiber, netCarb, protein, servings float64) (Rate, error) {
	if qty <= 0 {
		return Rate{}, fmt.Errorf("%w: qty=%v", ErrInvalidQuantity, qty)
	}
	if servings <= 0 {
		return Rate{}, fmt.Errorf("%w: servings=%v", ErrInvalidQuantity, servings)
	}
	perUnit := qty / servings
	return Rate{
		Kcal:    round4(kcal / perUnit),
		Fat:     round4(fat / perUnit),
		Carb:    round4(carb / perUnit),
		Fiber:   round4(fiber / perUnit),
		NetCarb: round4(netCarb / perUnit),
		Protein: round4(protein / perUnit),
	}, nil
}

func (s *CatalogService) GetOrCreateUnit(name string) (uint, error) {
	var u models.Unit
	err := s.db.Where("name = ?", name).First(&u).Error
	if err == nil {
		return u.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	u = models.Unit{Name: name}
	if createErr := s.db.Create(&u).Error; createErr != nil {
		// existing row wins on a lost race
		if lookupErr := s.db.Where("name = ?", name).First(&u).Error; lookupErr == nil {
			return u.ID, nil
		}
		return 0, createErr
	}
	return u.ID, nil
}

func (s *CatalogService) GetOrCreateIngredient(name string) (uint, error) {
	var ing models.Ingredient
	err := s.db.Where("name = ?", name).First(&ing).Error
	if err == nil {
		return ing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	ing = models.Ingredient{Name: name}
	if createErr := s.db.Create(&ing).Error; createErr != nil {
		if lookupErr := s.db.Where("name = ?", name).First(&ing).Error; lookupErr == nil {
			return ing.ID, nil
		}
		return 0, createErr
	}
	return ing.ID, nil
}

// GetOrCreateQuantity deduplicates concrete (quantity, ingredient, unit)
// triples into reusable rows.
func (s *CatalogService) GetOrCreateQuantity(qty float64, ingredientID, unitID uint) (uint, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("%w: qty=%v", ErrInvalidQuantity, qty)
	}
	var iq models.IngredientQuantity
	err := s.db.
		Where("quantity = ? AND ingredient_id = ? AND unit_id = ?", qty, ingredientID, unitID).
		First(&iq).Error
	if err == nil {
		return iq.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	iq = models.IngredientQuantity{Quantity: qty, IngredientID: ingredientID, UnitID: unitID}
	if createErr := s.db.Create(&iq).Error; createErr != nil {
		if lookupErr := s.db.
			Where("quantity = ? AND ingredient_id = ? AND unit_id = ?", qty, ingredientID, unitID).
			First(&iq).Error; lookupErr == nil {
			return iq.ID, nil
		}
		return 0, createErr
	}
	return iq.ID, nil
}

// SaveRate upserts the per-unit rate for the (ingredient, unit) pair:
// created once, overwritten on re-entry, never duplicated.
func (s *CatalogService) SaveRate(ingredientID, unitID uint, r Rate) error {
	var existing models.NutritionRate
	err := s.db.
		Where("ingredient_id = ? AND unit_id = ?", ingredientID, unitID).
		First(&existing).Error
	if err == nil {
		existing.Kcal = r.Kcal
		existing.Fat = r.Fat
		existing.Carb = r.Carb
		existing.Fiber = r.Fiber
		existing.NetCarb = r.NetCarb
		existing.Protein = r.Protein
		return s.db.Save(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	row := models.NutritionRate{
		IngredientID: ingredientID,
		UnitID:       unitID,
		Kcal:         r.Kcal,
		Fat:          r.Fat,
		Carb:         r.Carb,
		Fiber:        r.Fiber,
		NetCarb:      r.NetCarb,
		Protein:      r.Protein,
	}
	if createErr := s.db.Create(&row).Error; createErr != nil {
		// lost race: overwrite the row that got there first
		if lookupErr := s.db.
			Where("ingredient_id = ? AND unit_id = ?", ingredientID, unitID).
			First(&existing).Error; lookupErr == nil {
			existing.Kcal = r.Kcal
			existing.Fat = r.Fat
			existing.Carb = r.Carb
			existing.Fiber = r.Fiber
			existing.NetCarb = r.NetCarb
			existing.Protein = r.Protein
			return s.db.Save(&existing).Error
		}
		return createErr
	}
	return nil
}

// Rate returns the stored per-unit rate for the pair, or ErrNotFound.
func (s *CatalogService) Rate(ingredientID, unitID uint) (Rate, error) {
	var row models.NutritionRate
	err := s.db.
		Where("ingredient_id = ? AND unit_id = ?", ingredientID, unitID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Rate{}, fmt.Errorf("%w: rate for ingredient %d unit %d", ErrNotFound, ingredientID, unitID)
	}
	if err != nil {
		return Rate{}, err
	}
	return Rate{
		Kcal:    row.Kcal,
		Fat:     row.Fat,
		Carb:    row.Carb,
		Fiber:   row.Fiber,
		NetCarb: row.NetCarb,
		Protein: row.Protein,
	}, nil
}

// QuantityRefs resolves a quantity row back to its ingredient and unit ids.
func (s *CatalogService) QuantityRefs(iqID uint) (ingredientID, unitID uint, err error) {
	var iq models.IngredientQuantity
	if err := s.db.First(&iq, iqID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, fmt.Errorf("%w: ingredient quantity %d", ErrNotFound, iqID)
		}
		return 0, 0, err
	}
	return iq.IngredientID, iq.UnitID, nil
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
