// controllers/food_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type FoodController struct {
	Svc *services.FoodService
}

func NewFoodController(svc *services.FoodService) *FoodController {
	return &FoodController{Svc: svc}
}

// POST /foods  { entry fields..., "servings": 2 }
func (h *FoodController) SaveFood(c *gin.Context) {
	var body struct {
		services.FoodEntry
		Servings float64 `json:"servings"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Servings <= 0 {
		body.Servings = 1
	}

	iqID, err := h.Svc.SaveFood(body.FoodEntry, body.Servings)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"quantity_id": iqID})
}

// GET /foods
func (h *FoodController) ListFoods(c *gin.Context) {
	rows, err := h.Svc.ListFoods()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, rows)
}

// GET /foods/page?page=1&per_page=20&search=chick&favorites=true&min_kcal=100
func (h *FoodController) ListFoodsPage(c *gin.Context) {
	opts := services.FoodPageOptions{
		Search:        c.Query("search"),
		FavoritesOnly: c.Query("favorites") == "true",
	}
	opts.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	opts.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	for param, dst := range map[string]**float64{
		"min_kcal":    &opts.MinKcal,
		"max_kcal":    &opts.MaxKcal,
		"min_protein": &opts.MinProtein,
		"max_protein": &opts.MaxProtein,
	} {
		if raw := c.Query(param); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				*dst = &v
			}
		}
	}

	page, err := h.Svc.ListFoodsPage(opts)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, page)
}

// GET /foods/:id
func (h *FoodController) GetFood(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		return
	}
	row, err := h.Svc.GetFood(id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, row)
}

// PUT /foods/:id
func (h *FoodController) UpdateFood(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		return
	}
	var entry services.FoodEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.UpdateFood(id, entry); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "food updated"})
}

// DELETE /foods/quantities/:id
func (h *FoodController) DeleteQuantity(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		return
	}
	if err := h.Svc.DeleteQuantity(id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "quantity deleted"})
}

// DELETE /foods/ingredients/:id
func (h *FoodController) DeleteIngredient(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		return
	}
	if err := h.Svc.DeleteIngredient(id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "ingredient deleted"})
}

// POST /foods/ingredients/:id/favorite
func (h *FoodController) ToggleFavorite(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		return
	}
	favored, err := h.Svc.ToggleFavorite(id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"favorite": favored})
}

func pathUint(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, err
	}
	return uint(v), nil
}
