// Package dashboard aggregates counts for the operations overview.
package dashboard

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hferreira23/batchwatch/internal/logging"
)

// Summary is the operations overview payload.
type Summary struct {
	TotalProducts    int            `json:"totalProducts"`
	TotalBatches     int            `json:"totalBatches"`
	TotalReadings    int            `json:"totalReadings"`
	TotalInspections int            `json:"totalInspections"`
	TotalAlerts      int            `json:"totalAlerts"`
	BatchesByRisk    map[string]int `json:"batchesByRisk"`
}

// Counters is the slice of each store the dashboard needs.
type Counters struct {
	Products    func(ctx context.Context) (int, error)
	Batches     func(ctx context.Context) (int, error)
	BatchesRisk func(ctx context.Context) (map[string]int, error)
	Readings    func(ctx context.Context) (int, error)
	Inspections func(ctx context.Context) (int, error)
	Alerts      func(ctx context.Context) (int, error)
}

// Handler serves the dashboard summary endpoint.
type Handler struct {
	counters Counters
}

func NewHandler(counters Counters) *Handler {
	return &Handler{counters: counters}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/dashboard/summary", h.summary)
}

func (h *Handler) summary(c *gin.Context) {
	ctx := c.Request.Context()
	s := Summary{BatchesByRisk: make(map[string]int)}

	counts := []struct {
		fn   func(ctx context.Context) (int, error)
		dest *int
	}{
		{h.counters.Products, &s.TotalProducts},
		{h.counters.Batches, &s.TotalBatches},
		{h.counters.Readings, &s.TotalReadings},
		{h.counters.Inspections, &s.TotalInspections},
		{h.counters.Alerts, &s.TotalAlerts},
	}
	for _, c2 := range counts {
		n, err := c2.fn(ctx)
		if err != nil {
			logging.L(ctx).Error("dashboard count failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
			return
		}
		*c2.dest = n
	}

	byRisk, err := h.counters.BatchesRisk(ctx)
	if err != nil {
		logging.L(ctx).Error("dashboard risk counts failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	// Every bucket appears in the payload even when empty.
	for _, level := range []string{"LOW", "MEDIUM", "HIGH", "UNKNOWN"} {
		s.BatchesByRisk[level] = byRisk[level]
	}

	c.JSON(http.StatusOK, s)
}
