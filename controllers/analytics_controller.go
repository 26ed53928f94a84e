// controllers/analytics_controller.go
package controllers

import (
	"strconv"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Svc *services.AnalyticsService
}

func NewAnalyticsController(svc *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Svc: svc}
}

// All analytics routes take optional start/end query params bounding the
// inclusive day range; a single date param means that one day.
func rangeParams(c *gin.Context) (string, string) {
	if date := c.Query("date"); date != "" {
		return date, date
	}
	return c.Query("start"), c.Query("end")
}

// GET /analytics/daily?start=01.01.2024&end=31.01.2024
func (h *AnalyticsController) DailyTotals(c *gin.Context) {
	start, end := rangeParams(c)
	totals, err := h.Svc.DailyTotals(start, end)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, totals)
}

// GET /analytics/weekly
func (h *AnalyticsController) WeeklyAverages(c *gin.Context) {
	start, end := rangeParams(c)
	weeks, err := h.Svc.WeeklyAverages(start, end)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, weeks)
}

// GET /analytics/macros?date=05.03.2024  (no params: whole history)
func (h *AnalyticsController) MacroDistribution(c *gin.Context) {
	start, end := rangeParams(c)
	dist, err := h.Svc.MacroDistribution(start, end)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, dist)
}

// GET /analytics/frequency?top=10
func (h *AnalyticsController) FoodFrequency(c *gin.Context) {
	start, end := rangeParams(c)
	topN, _ := strconv.Atoi(c.DefaultQuery("top", "10"))
	rows, err := h.Svc.FoodFrequency(start, end, topN)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, rows)
}

// GET /analytics/summary
func (h *AnalyticsController) Summary(c *gin.Context) {
	start, end := rangeParams(c)
	stats, err := h.Svc.SummaryStats(start, end)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, stats)
}

// GET /analytics/trends
func (h *AnalyticsController) Trends(c *gin.Context) {
	start, end := rangeParams(c)
	series, err := h.Svc.TrendSeries(start, end)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, series)
}
