package risk

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hferreira23/batchwatch/internal/logging"
	"github.com/hferreira23/batchwatch/internal/validation"
)

// BatchView fetches the full batch representation for responses. The
// concrete batch type stays in its own package; handlers only re-serialize.
type BatchView interface {
	View(ctx context.Context, batchID string) (any, error)
}

// Handler serves the risk computation and anomaly check endpoints.
type Handler struct {
	service *Service
	batches BatchView
}

func NewHandler(service *Service, batches BatchView) *Handler {
	return &Handler{service: service, batches: batches}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/batches/:id/compute-risk", h.computeRisk)
	r.GET("/batches/:id/risk-assessments", h.listAssessments)
	r.POST("/sensor/analyze/batch/:id", h.analyze)
}

func (h *Handler) computeRisk(c *gin.Context) {
	batchID := c.Param("id")

	a, err := h.service.ComputeBatchRisk(c.Request.Context(), batchID)
	if errors.Is(err, ErrBatchNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "batch not found"})
		return
	}
	if err != nil {
		logging.L(c.Request.Context()).Error("compute risk failed", "batch_id", batchID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	resp := gin.H{"assessment": a}
	if h.batches != nil {
		if b, err := h.batches.View(c.Request.Context(), batchID); err == nil {
			resp["batch"] = b
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listAssessments(c *gin.Context) {
	batchID := c.Param("id")

	out, err := h.service.Assessments(c.Request.Context(), batchID)
	if errors.Is(err, ErrBatchNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "batch not found"})
		return
	}
	if err != nil {
		logging.L(c.Request.Context()).Error("list assessments failed", "batch_id", batchID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": out, "count": len(out)})
}

type analyzeRequest struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

func (h *Handler) analyze(c *gin.Context) {
	batchID := c.Param("id")

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	if req.Temperature == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "temperature is required"})
		return
	}
	if verr := validation.Validate(
		validation.TemperatureInRange("temperature", *req.Temperature),
		validation.HumidityInRange("humidity", req.Humidity),
	); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": verr.Error()})
		return
	}

	result, err := h.service.AnalyzeReading(c.Request.Context(), batchID, Observation{
		TemperatureC: *req.Temperature,
		HumidityPct:  req.Humidity,
	})
	if errors.Is(err, ErrBatchNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "batch not found"})
		return
	}
	if err != nil {
		logging.L(c.Request.Context()).Error("anomaly check failed", "batch_id", batchID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, result)
}
