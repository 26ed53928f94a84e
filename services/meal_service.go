// services/meal_service.go
package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

// MealService is the consumption ledger: discrete eat-events keyed by
// (date, quantity, meal type) with idempotent accumulation, plus the daily
// and weekly meal views the UI renders.
type MealService struct {
	db      *gorm.DB
	catalog *CatalogService
	metrics *utils.Metrics
}

func NewMealService(db *gorm.DB, catalog *CatalogService, m *utils.Metrics) *MealService {
	return &MealService{db: db, catalog: catalog, metrics: m}
}

// ConsumptionRow is the fully joined ledger projection. Quantity and macros
// are multiplied by the accumulated portions; macro fields are nil when the
// underlying rate/ingredient/unit is gone (possibly stale display row).
type ConsumptionRow struct {
	ConsumptionID        uint     `json:"consumption_id"`
	Date                 string   `json:"date"`
	Qty                  float64  `json:"qty"`
	Unit                 string   `json:"unit"`
	Ingredient           string   `json:"ingredient"`
	Kcal                 *float64 `json:"kcal"`
	Fat                  *float64 `json:"fat"`
	Carb                 *float64 `json:"carb"`
	Fiber                *float64 `json:"fiber"`
	NetCarb              *float64 `json:"net_carb"`
	Protein              *float64 `json:"protein"`
	Portions             int      `json:"portions"`
	IngredientQuantityID uint     `json:"iq_id"`
	MealType             string   `json:"meal_type"`
}

// RecordConsumption appends one eat-event. The date is normalized first; an
// existing (date, quantity, meal) row accumulates a portion instead of
// duplicating. Returns whether a row was created and the portions after.
func (s *MealService) RecordConsumption(date string, iqID uint, mealType string) (created bool, portions int, err error) {
	if date == "" {
		date = utils.Today()
	}
	day, err := utils.NormalizeDay(date)
	if err != nil {
		return false, 0, err
	}
	if mealType == "" {
		mealType = models.MealOther
	}

	var row models.Consumption
	findErr := s.db.
		Where("date = ? AND ingredient_quantity_id = ? AND meal_type = ?", day, iqID, mealType).
		First(&row).Error
	switch {
	case findErr == nil:
		row.Portions++
		if err := s.db.Save(&row).Error; err != nil {
			return false, 0, err
		}
		s.countLedger("accumulated")
		return false, row.Portions, nil
	case errors.Is(findErr, gorm.ErrRecordNotFound):
		row = models.Consumption{
			Date:                 day,
			IngredientQuantityID: iqID,
			MealType:             mealType,
			Portions:             1,
		}
		if createErr := s.db.Create(&row).Error; createErr != nil {
			// lost race on the unique key: fold into the row that won
			if s.db.
				Where("date = ? AND ingredient_quantity_id = ? AND meal_type = ?", day, iqID, mealType).
				First(&row).Error == nil {
				row.Portions++
				if err := s.db.Save(&row).Error; err != nil {
					return false, 0, err
				}
				s.countLedger("accumulated")
				return false, row.Portions, nil
			}
			return false, 0, createErr
		}
		s.countLedger("created")
		return true, 1, nil
	default:
		return false, 0, findErr
	}
}

// DeleteConsumption removes the whole accumulated entry, not one portion.
func (s *MealService) DeleteConsumption(id uint) error {
	res := s.db.Unscoped().Delete(&models.Consumption{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: consumption %d", ErrNotFound, id)
	}
	s.countLedger("deleted")
	return nil
}

// UpdateConsumption changes an entry's quantity by deleting the row and
// recording a fresh one against a newly registered quantity. The original
// consumption id is destroyed and a new id issued; accumulated portions
// reset to one. Callers needing stable ids must not rely on this path.
func (s *MealService) UpdateConsumption(id uint, newQty float64) (uint, error) {
	var row models.Consumption
	if err := s.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: consumption %d", ErrNotFound, id)
		}
		return 0, err
	}

	ingredientID, unitID, err := s.catalog.QuantityRefs(row.IngredientQuantityID)
	if err != nil {
		return 0, err
	}
	newIQ, err := s.catalog.GetOrCreateQuantity(newQty, ingredientID, unitID)
	if err != nil {
		return 0, err
	}

	if err := s.DeleteConsumption(id); err != nil {
		return 0, err
	}
	if _, _, err := s.RecordConsumption(row.Date, newIQ, row.MealType); err != nil {
		return 0, err
	}

	var fresh models.Consumption
	if err := s.db.
		Where("date = ? AND ingredient_quantity_id = ? AND meal_type = ?", row.Date, newIQ, row.MealType).
		First(&fresh).Error; err != nil {
		return 0, err
	}
	return fresh.ID, nil
}

// AddFoodToMeal records a catalog food against a date/meal, registering a
// new quantity row when the requested amount differs from the catalog one.
func (s *MealService) AddFoodToMeal(iqID uint, mealType string, qty float64, date string) error {
	var iq models.IngredientQuantity
	if err := s.db.First(&iq, iqID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: food %d", ErrNotFound, iqID)
		}
		return err
	}

	targetIQ := iqID
	if qty > 0 && qty != iq.Quantity {
		newIQ, err := s.catalog.GetOrCreateQuantity(qty, iq.IngredientID, iq.UnitID)
		if err != nil {
			return err
		}
		targetIQ = newIQ
	}

	_, _, err := s.RecordConsumption(date, targetIQ, mealType)
	return err
}

const consumptionProjection = `
	c.id AS consumption_id,
	c.date AS date,
	iq.quantity * c.portions AS qty,
	u.name AS unit,
	i.name AS ingredient,
	round(iq.quantity * n.kcal * c.portions, 2) AS kcal,
	round(iq.quantity * n.fat * c.portions, 2) AS fat,
	round(iq.quantity * n.carb * c.portions, 2) AS carb,
	round(iq.quantity * n.fiber * c.portions, 2) AS fiber,
	round(iq.quantity * n.net_carb * c.portions, 2) AS net_carb,
	round(iq.quantity * n.protein * c.portions, 2) AS protein,
	c.portions AS portions,
	c.ingredient_quantity_id AS ingredient_quantity_id,
	c.meal_type AS meal_type`

func (s *MealService) consumptionQuery() *gorm.DB {
	return s.db.
		Table("consumptions AS c").
		Joins("LEFT JOIN ingredient_quantities AS iq ON iq.id = c.ingredient_quantity_id AND iq.deleted_at IS NULL").
		Joins("LEFT JOIN units AS u ON u.id = iq.unit_id AND u.deleted_at IS NULL").
		Joins("LEFT JOIN ingredients AS i ON i.id = iq.ingredient_id AND i.deleted_at IS NULL").
		Joins("LEFT JOIN nutrition_rates AS n ON n.ingredient_id = iq.ingredient_id AND n.unit_id = iq.unit_id AND n.deleted_at IS NULL").
		Where("c.deleted_at IS NULL")
}

// FetchAllConsumption returns the joined ledger ordered by calendar day
// ascending. Rows with dangling references survive with nil macros.
func (s *MealService) FetchAllConsumption() ([]ConsumptionRow, error) {
	var rows []ConsumptionRow
	if err := s.consumptionQuery().Select(consumptionProjection).Scan(&rows).Error; err != nil {
		return nil, err
	}
	sortRowsByDay(rows)
	return rows, nil
}

func (s *MealService) consumptionForDay(day string) ([]ConsumptionRow, error) {
	var rows []ConsumptionRow
	err := s.consumptionQuery().
		Select(consumptionProjection).
		Where("c.date = ?", day).
		Scan(&rows).Error
	return rows, err
}

// canonical date strings sort chronologically only after parsing
func sortRowsByDay(rows []ConsumptionRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		di, erri := utils.ParseDay(rows[i].Date)
		dj, errj := utils.ParseDay(rows[j].Date)
		if erri != nil || errj != nil {
			return rows[i].Date < rows[j].Date
		}
		return di.Before(dj)
	})
}

// MacroTotals is the calories/protein/carbs/fat roll-up the views show.
type MacroTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (t *MacroTotals) add(kcal, protein, carb, fat *float64) {
	if kcal != nil {
		t.Calories = round1(t.Calories + *kcal)
	}
	if protein != nil {
		t.Protein = round1(t.Protein + *protein)
	}
	if carb != nil {
		t.Carbs = round1(t.Carbs + *carb)
	}
	if fat != nil {
		t.Fat = round1(t.Fat + *fat)
	}
}

// MealItem is one row of a daily view: a ledger entry or a single-recipe
// item folded into the same shape.
type MealItem struct {
	ConsumptionRow
	IsRecipe            bool `json:"is_recipe"`
	RecipeID            uint `json:"recipe_id,omitempty"`
	RecipeConsumptionID uint `json:"recipe_consumption_id,omitempty"`
}

// DailyMealView is the per-day meal tracking payload.
type DailyMealView struct {
	MealsByType  map[string][]MealItem  `json:"meals_by_type"`
	MealTotals   map[string]MacroTotals `json:"meal_totals"`
	DailyTotals  MacroTotals            `json:"daily_totals"`
	SelectedDate string                 `json:"selected_date"` // ISO for pickers
	DisplayDate  string                 `json:"display_date"`
	PrevDate     string                 `json:"prev_date"`
	NextDate     string                 `json:"next_date"`
}

// DailyMeals groups the day's ledger and single-recipe items by meal type
// with per-meal and daily totals. An unparseable or empty date falls back
// to today.
func (s *MealService) DailyMeals(dateStr string) (*DailyMealView, error) {
	selected, err := utils.ParseDay(dateStr)
	if err != nil {
		selected, _ = utils.ParseDay(utils.Today())
	}
	day := utils.FormatDay(selected)

	view := &DailyMealView{
		MealsByType:  make(map[string][]MealItem, len(models.MealTypes)),
		MealTotals:   make(map[string]MacroTotals, len(models.MealTypes)),
		SelectedDate: selected.Format("2006-01-02"),
		DisplayDate:  selected.Format("Monday, January 02, 2006"),
		PrevDate:     selected.AddDate(0, 0, -1).Format("2006-01-02"),
		NextDate:     selected.AddDate(0, 0, 1).Format("2006-01-02"),
	}
	for _, mt := range models.MealTypes {
		view.MealsByType[mt] = []MealItem{}
		view.MealTotals[mt] = MacroTotals{}
	}

	rows, err := s.consumptionForDay(day)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		mt := r.MealType
		if _, ok := view.MealsByType[mt]; !ok {
			mt = models.MealOther
		}
		view.MealsByType[mt] = append(view.MealsByType[mt], MealItem{ConsumptionRow: r})
		totals := view.MealTotals[mt]
		totals.add(r.Kcal, r.Protein, r.Carb, r.Fat)
		view.MealTotals[mt] = totals
		view.DailyTotals.add(r.Kcal, r.Protein, r.Carb, r.Fat)
	}

	recipes, err := fetchRecipeConsumption(s.db, day)
	if err != nil {
		return nil, err
	}
	for _, rc := range recipes {
		mt := rc.MealType
		if _, ok := view.MealsByType[mt]; !ok {
			mt = models.MealOther
		}
		view.MealsByType[mt] = append(view.MealsByType[mt], recipeMealItem(rc))
		totals := view.MealTotals[mt]
		totals.add(rc.Kcal, rc.Protein, rc.Carb, rc.Fat)
		view.MealTotals[mt] = totals
		view.DailyTotals.add(rc.Kcal, rc.Protein, rc.Carb, rc.Fat)
	}

	return view, nil
}

func recipeMealItem(rc RecipeConsumptionRow) MealItem {
	return MealItem{
		ConsumptionRow: ConsumptionRow{
			Date:       rc.Date,
			Qty:        rc.Servings,
			Unit:       "serving(s)",
			Ingredient: "[Recipe] " + rc.RecipeName,
			Kcal:       rc.Kcal,
			Fat:        rc.Fat,
			Carb:       rc.Carb,
			Protein:    rc.Protein,
			MealType:   rc.MealType,
		},
		IsRecipe:            true,
		RecipeID:            rc.RecipeID,
		RecipeConsumptionID: rc.ID,
	}
}

// WeekDay is one day inside the weekly view.
type WeekDay struct {
	Date        string                `json:"date"` // ISO
	DisplayDate string                `json:"display_date"`
	Meals       map[string][]MealItem `json:"meals"`
	Totals      MacroTotals           `json:"totals"`
}

// WeeklyMealView covers a Monday-aligned week.
type WeeklyMealView struct {
	Days        []WeekDay   `json:"days"`
	WeekTotals  MacroTotals `json:"week_totals"`
	WeekStart   string      `json:"week_start"` // ISO
	WeekDisplay string      `json:"week_display"`
	PrevWeek    string      `json:"prev_week"`
	NextWeek    string      `json:"next_week"`
}

// WeeklyMeals renders seven days starting at the Monday of the week
// containing startStr (today when absent or unparseable).
func (s *MealService) WeeklyMeals(startStr string) (*WeeklyMealView, error) {
	start, err := utils.ParseDay(startStr)
	if err != nil {
		start, _ = utils.ParseDay(utils.Today())
	}
	start = startOfWeek(start)

	view := &WeeklyMealView{
		WeekStart: start.Format("2006-01-02"),
		WeekDisplay: fmt.Sprintf("%s - %s",
			start.Format("Jan 02"),
			start.AddDate(0, 0, 6).Format("Jan 02, 2006")),
		PrevWeek: start.AddDate(0, 0, -7).Format("2006-01-02"),
		NextWeek: start.AddDate(0, 0, 7).Format("2006-01-02"),
	}

	for offset := 0; offset < 7; offset++ {
		current := start.AddDate(0, 0, offset)
		day := utils.FormatDay(current)

		wd := WeekDay{
			Date:        current.Format("2006-01-02"),
			DisplayDate: current.Format("Monday, Jan 02"),
			Meals:       make(map[string][]MealItem, len(models.MealTypes)),
		}
		for _, mt := range models.MealTypes {
			wd.Meals[mt] = []MealItem{}
		}

		rows, err := s.consumptionForDay(day)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			mt := r.MealType
			if _, ok := wd.Meals[mt]; !ok {
				mt = models.MealOther
			}
			wd.Meals[mt] = append(wd.Meals[mt], MealItem{ConsumptionRow: r})
			wd.Totals.add(r.Kcal, r.Protein, r.Carb, r.Fat)
		}

		recipes, err := fetchRecipeConsumption(s.db, day)
		if err != nil {
			return nil, err
		}
		for _, rc := range recipes {
			mt := rc.MealType
			if _, ok := wd.Meals[mt]; !ok {
				mt = models.MealOther
			}
			wd.Meals[mt] = append(wd.Meals[mt], recipeMealItem(rc))
			wd.Totals.add(rc.Kcal, rc.Protein, rc.Carb, rc.Fat)
		}

		view.WeekTotals.add(&wd.Totals.Calories, &wd.Totals.Protein, &wd.Totals.Carbs, &wd.Totals.Fat)
		view.Days = append(view.Days, wd)
	}

	return view, nil
}

func startOfWeek(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return t.AddDate(0, 0, -(wd - 1)) // Monday
}

func (s *MealService) countLedger(outcome string) {
	if s.metrics != nil {
		s.metrics.LedgerWrites.WithLabelValues(outcome).Inc()
	}
}
