// controllers/ingestion_controller.go
package controllers

import (
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type IngestionController struct {
	Svc *services.IngestionService
}

func NewIngestionController(svc *services.IngestionService) *IngestionController {
	return &IngestionController{Svc: svc}
}

// POST /batches  { "text": "qty, unit, ingr, ...\n100, g, chicken, ..." }
// Parses the pasted text and parks the accepted rows under a handle for a
// later confirm.
func (h *IngestionController) ParseBatch(c *gin.Context) {
	var body struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Svc.ParseBatch(body.Text)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	handle := h.Svc.Stash(result.Rows)
	c.JSON(200, gin.H{
		"handle":   handle,
		"rows":     result.Rows,
		"rejected": result.Rejected,
	})
}

// GET /batches/:handle
func (h *IngestionController) PreviewBatch(c *gin.Context) {
	rows, err := h.Svc.Peek(c.Param("handle"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"rows": rows})
}

// POST /batches/:handle/confirm  { "servings": 1 }
func (h *IngestionController) ConfirmBatch(c *gin.Context) {
	var body struct {
		Servings float64 `json:"servings"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.Svc.Take(c.Param("handle"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	result, err := h.Svc.SaveBatch(rows, body.Servings)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(http.StatusCreated, result)
}
