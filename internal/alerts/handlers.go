package alerts

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hferreira23/batchwatch/internal/logging"
	"github.com/hferreira23/batchwatch/internal/pagination"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Handler serves alert listing endpoints. Alerts are created only by the
// risk engine; there is no write endpoint.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/alerts", h.list)
	r.GET("/batches/:id/alerts", h.listByBatch)
}

func (h *Handler) list(c *gin.Context) {
	cursor, err := pagination.Decode(c.Query("cursor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "invalid cursor"})
		return
	}
	limit := parseLimit(c.Query("limit"))

	items, err := h.store.List(c.Request.Context(), cursor, limit)
	if err != nil {
		logging.L(c.Request.Context()).Error("list alerts failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	page, next, hasMore := pagination.ComputePage(items, limit, func(a *Alert) (time.Time, string) {
		return a.CreatedAt, a.ID
	})
	c.JSON(http.StatusOK, gin.H{
		"alerts":     page,
		"nextCursor": next,
		"hasMore":    hasMore,
	})
}

func (h *Handler) listByBatch(c *gin.Context) {
	items, err := h.store.ListByBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		logging.L(c.Request.Context()).Error("list batch alerts failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": items, "count": len(items)})
}

func parseLimit(s string) int {
	if s == "" {
		return defaultPageSize
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return defaultPageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}
