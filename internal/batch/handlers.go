package batch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hferreira23/batchwatch/internal/idgen"
	"github.com/hferreira23/batchwatch/internal/logging"
	"github.com/hferreira23/batchwatch/internal/validation"
)

// ProductDirectory reports whether a product exists. Implemented by the
// product store; kept narrow so handlers do not depend on that package.
type ProductDirectory interface {
	Exists(ctx context.Context, productID string) (bool, error)
}

// Handler serves batch endpoints.
type Handler struct {
	store    Store
	products ProductDirectory
}

func NewHandler(store Store, products ProductDirectory) *Handler {
	return &Handler{store: store, products: products}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/batches", h.list)
	r.POST("/batches", h.create)
	r.GET("/batches/:id", h.get)
	r.PUT("/batches/:id", h.update)
	r.DELETE("/batches/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = StatusInProgress
	}
	if !validation.IsValidBatchStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "status must be one of IN_PROGRESS, COMPLETED, REJECTED"})
		return
	}

	ok, err := h.products.Exists(c.Request.Context(), req.ProductID)
	if err != nil {
		logging.L(c.Request.Context()).Error("product lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "product not found"})
		return
	}

	now := time.Now().UTC()
	b := &Batch{
		ID:        idgen.WithPrefix("batch_"),
		ProductID: req.ProductID,
		Code:      validation.SanitizeString(req.Code, 100),
		Status:    status,
		LineID:    validation.SanitizeString(req.LineID, 100),
		RiskLevel: RiskUnknown,
		StartedAt: now,
		CreatedAt: now,
	}
	if b.Code == "" {
		b.Code = b.ID
	}

	if err := h.store.Create(c.Request.Context(), b); err != nil {
		logging.L(c.Request.Context()).Error("create batch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrBatchNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "batch not found"})
		return
	}
	if err != nil {
		logging.L(c.Request.Context()).Error("get batch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) list(c *gin.Context) {
	batches, err := h.store.List(c.Request.Context())
	if err != nil {
		logging.L(c.Request.Context()).Error("list batches failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": batches, "count": len(batches)})
}

func (h *Handler) update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	b, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrBatchNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "batch not found"})
		return
	}
	if err != nil {
		logging.L(c.Request.Context()).Error("get batch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if req.Status != nil {
		if !validation.IsValidBatchStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "status must be one of IN_PROGRESS, COMPLETED, REJECTED"})
			return
		}
		b.Status = *req.Status
	}
	if req.LineID != nil {
		b.LineID = validation.SanitizeString(*req.LineID, 100)
	}
	if req.EndedAt != nil {
		t := req.EndedAt.UTC()
		b.EndedAt = &t
	}

	if err := h.store.Update(c.Request.Context(), b); err != nil {
		logging.L(c.Request.Context()).Error("update batch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) delete(c *gin.Context) {
	err := h.store.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrBatchNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "batch not found"})
		return
	}
	if err != nil {
		logging.L(c.Request.Context()).Error("delete batch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.Status(http.StatusNoContent)
}
