// controllers/weight_controller.go
package controllers

import (
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type WeightController struct {
	Svc *services.WeightService
}

func NewWeightController(svc *services.WeightService) *WeightController {
	return &WeightController{Svc: svc}
}

// POST /weights  { "date": "05.03.2024", "weight": 81.4 }
func (h *WeightController) AddWeight(c *gin.Context) {
	var body struct {
		Date   string  `json:"date"`
		Weight float64 `json:"weight" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.Svc.AddWeight(body.Date, body.Weight)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"created": created})
}

// GET /weights
func (h *WeightController) ListWeights(c *gin.Context) {
	rows, err := h.Svc.Weights()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, rows)
}

// DELETE /weights/:id
func (h *WeightController) DeleteWeight(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		return
	}
	if err := h.Svc.DeleteWeight(id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "weight deleted"})
}

// POST /calories  { "date": "", "calories": 2100, "total_calories": 2600 }
func (h *WeightController) AddCalories(c *gin.Context) {
	var body struct {
		Date          string   `json:"date"`
		Calories      float64  `json:"calories" binding:"required"`
		TotalCalories *float64 `json:"total_calories"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.Svc.AddCalories(body.Date, body.Calories, body.TotalCalories)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"created": created})
}

// GET /calories
func (h *WeightController) ListCalories(c *gin.Context) {
	rows, err := h.Svc.Calories()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, rows)
}
