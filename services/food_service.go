// services/food_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backend/cache"
	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

const foodsCacheKey = "catalog:foods"

// FoodService is the food catalog surface: single-entry saves, the joined
// read projection, favorites and the paginated listing. Every write that can
// change catalog membership invalidates the listing cache synchronously.
type FoodService struct {
	db      *gorm.DB
	catalog *CatalogService
	cache   *cache.Client
	metrics *utils.Metrics
}

func NewFoodService(db *gorm.DB, catalog *CatalogService, c *cache.Client, m *utils.Metrics) *FoodService {
	return &FoodService{db: db, catalog: catalog, cache: c, metrics: m}
}

// FoodEntry is one raw food measurement: absolute macros over Qty units.
type FoodEntry struct {
	Ingredient string  `json:"ingr"`
	Unit       string  `json:"unit"`
	Qty        float64 `json:"qty"`
	Kcal       float64 `json:"kcal"`
	Fat        float64 `json:"fat"`
	Carb       float64 `json:"carb"`
	Fiber      float64 `json:"fiber"`
	NetCarb    float64 `json:"net_carb"`
	Protein    float64 `json:"protein"`
}

// FoodRow is the joined projection shown to the UI. Macro fields are
// pointers: a dangling rate (deleted ingredient/unit/rate) keeps the row
// with nil macros instead of dropping it.
type FoodRow struct {
	ID           uint     `json:"id"`
	Qty          float64  `json:"qty"`
	Unit         string   `json:"unit"`
	Ingredient   string   `json:"ingredient"`
	IngredientID uint     `json:"ingredient_id"`
	Kcal         *float64 `json:"kcal"`
	Fat          *float64 `json:"fat"`
	Carb         *float64 `json:"carb"`
	Fiber        *float64 `json:"fiber"`
	NetCarb      *float64 `json:"net_carb"`
	Protein      *float64 `json:"protein"`
	IsFavorite   bool     `json:"is_favorite"`
}

// SaveFood normalizes one entry to a per-unit rate and registers unit,
// ingredient and quantity. Servings scales a multi-serving measurement down
// to one serving before registration. Returns the quantity id.
func (s *FoodService) SaveFood(entry FoodEntry, servings float64) (uint, error) {
	if servings <= 0 {
		servings = 1
	}
	rate, err := NormalizeRate(entry.Qty, entry.Kcal, entry.Fat, entry.Carb, entry.Fiber, entry.NetCarb, entry.Protein, servings)
	if err != nil {
		return 0, err
	}

	unitID, err := s.catalog.GetOrCreateUnit(strings.TrimSpace(entry.Unit))
	if err != nil {
		return 0, err
	}
	ingredientID, err := s.catalog.GetOrCreateIngredient(strings.TrimSpace(entry.Ingredient))
	if err != nil {
		return 0, err
	}
	iqID, err := s.catalog.GetOrCreateQuantity(entry.Qty/servings, ingredientID, unitID)
	if err != nil {
		return 0, err
	}
	if err := s.catalog.SaveRate(ingredientID, unitID, rate); err != nil {
		return 0, err
	}

	s.invalidate()
	return iqID, nil
}

// UpdateFood re-derives the per-unit rate of the quantity row's
// (ingredient, unit) pair from a fresh absolute measurement.
func (s *FoodService) UpdateFood(iqID uint, entry FoodEntry) error {
	ingredientID, unitID, err := s.catalog.QuantityRefs(iqID)
	if err != nil {
		return err
	}
	rate, err := NormalizeRate(entry.Qty, entry.Kcal, entry.Fat, entry.Carb, entry.Fiber, entry.NetCarb, entry.Protein, 1)
	if err != nil {
		return err
	}
	if err := s.catalog.SaveRate(ingredientID, unitID, rate); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// DeleteQuantity removes one quantity row from the catalog.
func (s *FoodService) DeleteQuantity(iqID uint) error {
	res := s.db.Unscoped().Delete(&models.IngredientQuantity{}, iqID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: ingredient quantity %d", ErrNotFound, iqID)
	}
	s.invalidate()
	return nil
}

// DeleteIngredient removes an ingredient with its quantity, rate and
// favorite rows. Ledger rows referencing the removed quantities survive and
// degrade to nil macros in the joined views.
func (s *FoodService) DeleteIngredient(ingredientID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("ingredient_id = ?", ingredientID).Delete(&models.IngredientQuantity{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("ingredient_id = ?", ingredientID).Delete(&models.NutritionRate{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("ingredient_id = ?", ingredientID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Delete(&models.Ingredient{}, ingredientID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: ingredient %d", ErrNotFound, ingredientID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate()
	return nil
}

const foodProjection = `
	iq.id AS id,
	iq.quantity AS qty,
	u.name AS unit,
	i.name AS ingredient,
	iq.ingredient_id AS ingredient_id,
	round(iq.quantity * n.kcal, 2) AS kcal,
	round(iq.quantity * n.fat, 2) AS fat,
	round(iq.quantity * n.carb, 2) AS carb,
	round(iq.quantity * n.fiber, 2) AS fiber,
	round(iq.quantity * n.net_carb, 2) AS net_carb,
	round(iq.quantity * n.protein, 2) AS protein`

func (s *FoodService) foodQuery() *gorm.DB {
	return s.db.
		Table("ingredient_quantities AS iq").
		Joins("LEFT JOIN ingredients AS i ON i.id = iq.ingredient_id AND i.deleted_at IS NULL").
		Joins("LEFT JOIN units AS u ON u.id = iq.unit_id AND u.deleted_at IS NULL").
		Joins("LEFT JOIN nutrition_rates AS n ON n.ingredient_id = iq.ingredient_id AND n.unit_id = iq.unit_id AND n.deleted_at IS NULL").
		Where("iq.deleted_at IS NULL")
}

// ListFoods returns every catalog row with absolute macros (rate × qty),
// newest first, reading through the TTL cache when one is configured.
func (s *FoodService) ListFoods() ([]FoodRow, error) {
	ctx := context.Background()
	var cached []FoodRow
	if err := s.cache.Get(ctx, foodsCacheKey, &cached); err == nil {
		return cached, nil
	}

	var rows []FoodRow
	err := s.foodQuery().
		Select(foodProjection).
		Order("iq.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if err := s.markFavorites(rows); err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, foodsCacheKey, rows)
	return rows, nil
}

// GetFood returns one catalog row.
func (s *FoodService) GetFood(iqID uint) (*FoodRow, error) {
	var rows []FoodRow
	err := s.foodQuery().
		Select(foodProjection).
		Where("iq.id = ?", iqID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: food %d", ErrNotFound, iqID)
	}
	if err := s.markFavorites(rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// FoodPageOptions filter and page the catalog listing.
type FoodPageOptions struct {
	Search        string
	FavoritesOnly bool
	MinKcal       *float64
	MaxKcal       *float64
	MinProtein    *float64
	MaxProtein    *float64
	Page          int // 1-based
	PerPage       int
}

// FoodPage is one page of the filtered catalog.
type FoodPage struct {
	Items   []FoodRow `json:"items"`
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}

// ListFoodsPage applies substring search, favorites-only and macro-bound
// filters, then pages the result. Macro bounds hit the same rate × qty
// expressions the projection exposes.
func (s *FoodService) ListFoodsPage(opts FoodPageOptions) (*FoodPage, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 {
		opts.PerPage = 20
	}

	q := s.foodQuery()
	if search := strings.TrimSpace(opts.Search); search != "" {
		q = q.Where("lower(i.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if opts.FavoritesOnly {
		q = q.Joins("JOIN favorites AS f ON f.ingredient_id = iq.ingredient_id AND f.deleted_at IS NULL")
	}
	if opts.MinKcal != nil {
		q = q.Where("iq.quantity * n.kcal >= ?", *opts.MinKcal)
	}
	if opts.MaxKcal != nil {
		q = q.Where("iq.quantity * n.kcal <= ?", *opts.MaxKcal)
	}
	if opts.MinProtein != nil {
		q = q.Where("iq.quantity * n.protein >= ?", *opts.MinProtein)
	}
	if opts.MaxProtein != nil {
		q = q.Where("iq.quantity * n.protein <= ?", *opts.MaxProtein)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []FoodRow
	err := q.
		Select(foodProjection).
		Order("iq.id DESC").
		Limit(opts.PerPage).
		Offset((opts.Page - 1) * opts.PerPage).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if err := s.markFavorites(rows); err != nil {
		return nil, err
	}

	return &FoodPage{Items: rows, Total: total, Page: opts.Page, PerPage: opts.PerPage}, nil
}

// ToggleFavorite flips membership and reports the new state.
func (s *FoodService) ToggleFavorite(ingredientID uint) (bool, error) {
	var ing models.Ingredient
	if err := s.db.First(&ing, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: ingredient %d", ErrNotFound, ingredientID)
		}
		return false, err
	}

	var fav models.Favorite
	err := s.db.Where("ingredient_id = ?", ingredientID).First(&fav).Error
	switch {
	case err == nil:
		if err := s.db.Unscoped().Delete(&fav).Error; err != nil {
			return false, err
		}
		s.invalidate()
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		fav = models.Favorite{IngredientID: ingredientID}
		if err := s.db.Create(&fav).Error; err != nil {
			return false, err
		}
		s.invalidate()
		return true, nil
	default:
		return false, err
	}
}

// FavoriteIDs returns the ingredient ids currently favorited.
func (s *FoodService) FavoriteIDs() (map[uint]bool, error) {
	var favs []models.Favorite
	if err := s.db.Find(&favs).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(favs))
	for _, f := range favs {
		out[f.IngredientID] = true
	}
	return out, nil
}

func (s *FoodService) markFavorites(rows []FoodRow) error {
	if len(rows) == 0 {
		return nil
	}
	favs, err := s.FavoriteIDs()
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].IsFavorite = favs[rows[i].IngredientID]
	}
	return nil
}

func (s *FoodService) invalidate() {
	if err := s.cache.Delete(context.Background(), foodsCacheKey); err == nil {
		if s.metrics != nil {
			s.metrics.CacheInvalidation.Inc()
		}
	}
}
