package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hferreira23/batchwatch/internal/idgen"
	"github.com/hferreira23/batchwatch/internal/logging"
	"github.com/hferreira23/batchwatch/internal/metrics"
	"github.com/hferreira23/batchwatch/internal/pagination"
	"github.com/hferreira23/batchwatch/internal/validation"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// BatchDirectory reports whether a batch exists.
type BatchDirectory interface {
	Exists(ctx context.Context, batchID string) (bool, error)
}

// EventSink receives domain events for live subscribers. May be nil.
type EventSink interface {
	Publish(event string, payload any)
}

// Handler serves sensor reading and inspection endpoints.
type Handler struct {
	store   Store
	batches BatchDirectory
	events  EventSink
}

func NewHandler(store Store, batches BatchDirectory, events EventSink) *Handler {
	return &Handler{store: store, batches: batches, events: events}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/sensor-readings", h.createReading)
	r.GET("/batches/:id/sensor-readings", h.listReadings)
	r.POST("/inspections", h.createInspection)
	r.GET("/batches/:id/inspections", h.listInspections)
}

func (h *Handler) createReading(c *gin.Context) {
	var req CreateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	if req.TemperatureC == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "temperatureC is required"})
		return
	}
	if verr := validation.Validate(
		validation.TemperatureInRange("temperatureC", *req.TemperatureC),
		validation.HumidityInRange("humidityPct", req.HumidityPct),
	); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": verr.Error()})
		return
	}

	if !h.requireBatch(c, req.BatchID) {
		return
	}

	now := time.Now().UTC()
	recordedAt := now
	if req.RecordedAt != nil {
		recordedAt = req.RecordedAt.UTC()
	}
	r := &SensorReading{
		ID:           idgen.WithPrefix("rdg_"),
		BatchID:      req.BatchID,
		TemperatureC: *req.TemperatureC,
		HumidityPct:  req.HumidityPct,
		RecordedAt:   recordedAt,
		CreatedAt:    now,
	}
	if err := h.store.CreateReading(c.Request.Context(), r); err != nil {
		logging.L(c.Request.Context()).Error("create reading failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	metrics.ReadingsRecordedTotal.Inc()
	if h.events != nil {
		h.events.Publish("reading", r)
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) listReadings(c *gin.Context) {
	batchID := c.Param("id")
	if !h.requireBatch(c, batchID) {
		return
	}

	cursor, err := pagination.Decode(c.Query("cursor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "invalid cursor"})
		return
	}
	limit := parseLimit(c.Query("limit"))

	items, err := h.store.ListReadings(c.Request.Context(), batchID, cursor, limit)
	if err != nil {
		logging.L(c.Request.Context()).Error("list readings failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	page, next, hasMore := pagination.ComputePage(items, limit, func(r *SensorReading) (time.Time, string) {
		return r.RecordedAt, r.ID
	})
	c.JSON(http.StatusOK, gin.H{
		"readings":   page,
		"nextCursor": next,
		"hasMore":    hasMore,
	})
}

func (h *Handler) createInspection(c *gin.Context) {
	var req CreateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	if req.TemperatureC == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "temperatureC is required"})
		return
	}
	result := strings.ToUpper(strings.TrimSpace(req.MicrobialResult))
	if result == "" {
		result = MicrobialPending
	}
	if verr := validation.Validate(
		validation.TemperatureInRange("temperatureC", *req.TemperatureC),
		validation.HumidityInRange("humidityPct", req.HumidityPct),
		validation.PHInRange("ph", req.PH),
		validation.MicrobialResult("microbialResult", result),
	); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": verr.Error()})
		return
	}

	if !h.requireBatch(c, req.BatchID) {
		return
	}

	now := time.Now().UTC()
	inspectedAt := now
	if req.InspectedAt != nil {
		inspectedAt = req.InspectedAt.UTC()
	}
	i := &Inspection{
		ID:              idgen.WithPrefix("insp_"),
		BatchID:         req.BatchID,
		TemperatureC:    *req.TemperatureC,
		HumidityPct:     req.HumidityPct,
		PH:              req.PH,
		MicrobialResult: result,
		Notes:           validation.SanitizeString(req.Notes, validation.MaxStringLength),
		InspectedAt:     inspectedAt,
		CreatedAt:       now,
	}
	if err := h.store.CreateInspection(c.Request.Context(), i); err != nil {
		logging.L(c.Request.Context()).Error("create inspection failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	metrics.InspectionsRecordedTotal.Inc()
	if h.events != nil {
		h.events.Publish("inspection", i)
	}
	c.JSON(http.StatusCreated, i)
}

func (h *Handler) listInspections(c *gin.Context) {
	batchID := c.Param("id")
	if !h.requireBatch(c, batchID) {
		return
	}

	inspections, err := h.store.ListInspections(c.Request.Context(), batchID)
	if err != nil {
		logging.L(c.Request.Context()).Error("list inspections failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inspections": inspections, "count": len(inspections)})
}

// requireBatch writes a 404 (or 500) response and returns false when the
// batch cannot be confirmed to exist.
func (h *Handler) requireBatch(c *gin.Context, batchID string) bool {
	ok, err := h.batches.Exists(c.Request.Context(), batchID)
	if err != nil {
		logging.L(c.Request.Context()).Error("batch lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return false
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "batch not found"})
		return false
	}
	return true
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
