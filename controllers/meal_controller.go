// controllers/meal_controller.go
package controllers

import (
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	Svc *services.MealService
}

func NewMealController(svc *services.MealService) *MealController {
	return &MealController{Svc: svc}
}

// POST /meals  { "date": "05.03.2024", "quantity_id": 7, "meal_type": "lunch" }
func (h *MealController) RecordConsumption(c *gin.Context) {
	var body struct {
		Date       string `json:"date"`
		QuantityID uint   `json:"quantity_id" binding:"required"`
		MealType   string `json:"meal_type"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, portions, err := h.Svc.RecordConsumption(body.Date, body.QuantityID, body.MealType)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"created": created, "portions": portions})
}

// POST /meals/food  { "quantity_id": 7, "meal_type": "lunch", "qty": 150, "date": "" }
func (h *MealController) AddFoodToMeal(c *gin.Context) {
	var body struct {
		QuantityID uint    `json:"quantity_id" binding:"required"`
		MealType   string  `json:"meal_type"`
		Qty        float64 `json:"qty"`
		Date       string  `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Svc.AddFoodToMeal(body.QuantityID, body.MealType, body.Qty, body.Date); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "added to meal"})
}

// GET /meals
func (h *MealController) ListConsumption(c *gin.Context) {
	rows, err := h.Svc.FetchAllConsumption()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, rows)
}

// GET /meals/daily?date=05.03.2024
func (h *MealController) DailyMeals(c *gin.Context) {
	view, err := h.Svc.DailyMeals(c.Query("date"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, view)
}

// GET /meals/weekly?start=04.03.2024
func (h *MealController) WeeklyMeals(c *gin.Context) {
	view, err := h.Svc.WeeklyMeals(c.Query("start"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, view)
}

// PUT /meals/:id  { "qty": 180 }
func (h *MealController) UpdateConsumption(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		return
	}
	var body struct {
		Qty float64 `json:"qty" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newID, err := h.Svc.UpdateConsumption(id, body.Qty)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"consumption_id": newID})
}

// DELETE /meals/:id
func (h *MealController) DeleteConsumption(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		return
	}
	if err := h.Svc.DeleteConsumption(id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "consumption deleted"})
}
