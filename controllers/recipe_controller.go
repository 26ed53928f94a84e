// controllers/recipe_controller.go
package controllers

import (
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type RecipeController struct {
	Svc *services.RecipeService
}

func NewRecipeController(svc *services.RecipeService) *RecipeController {
	return &RecipeController{Svc: svc}
}

// POST /recipes  { "name": "...", "date": "", "servings": 4, "entries": [...] }
func (h *RecipeController) CreateRecipe(c *gin.Context) {
	var body struct {
		Name     string               `json:"name" binding:"required"`
		Date     string               `json:"date"`
		Servings int                  `json:"servings"`
		Entries  []services.FoodEntry `json:"entries" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Svc.CreateRecipe(body.Name, body.Date, body.Servings, body.Entries)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GET /recipes
func (h *RecipeController) ListRecipes(c *gin.Context) {
	rows, err := h.Svc.ListRecipes()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, rows)
}

// GET /recipes/:id
func (h *RecipeController) RecipeDetail(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		return
	}
	detail, err := h.Svc.RecipeDetail(id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, detail)
}

// PUT /recipes/:id  { "name": "...", "servings": 4, "entries": [...], "as_variation": false }
func (h *RecipeController) UpdateRecipe(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		return
	}
	var body struct {
		Name        string               `json:"name" binding:"required"`
		Servings    int                  `json:"servings"`
		Entries     []services.FoodEntry `json:"entries" binding:"required"`
		AsVariation bool                 `json:"as_variation"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Svc.UpdateRecipe(id, body.Name, body.Servings, body.Entries, body.AsVariation)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(200, result)
}

// DELETE /recipes/:id
func (h *RecipeController) DeleteRecipe(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		return
	}
	if err := h.Svc.DeleteRecipe(id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "recipe deleted"})
}

// POST /recipes/:id/meal
// { "meal_type": "dinner", "servings": 1.5, "date": "", "mode": "recipe_item" }
func (h *RecipeController) AddRecipeToMeal(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		return
	}
	var body struct {
		MealType string  `json:"meal_type"`
		Servings float64 `json:"servings"`
		Date     string  `json:"date"`
		Mode     string  `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.Svc.AddRecipeToMeal(id, body.MealType, body.Servings, body.Date, services.AddMode(body.Mode))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "recipe added to meal"})
}

// GET /recipes/consumption?date=05.03.2024
func (h *RecipeController) ListRecipeConsumption(c *gin.Context) {
	rows, err := h.Svc.RecipeConsumptionFor(c.Query("date"))
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, rows)
}

// DELETE /recipes/consumption/:id
func (h *RecipeController) DeleteRecipeConsumption(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		return
	}
	if err := h.Svc.DeleteRecipeConsumption(id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "recipe consumption deleted"})
}
