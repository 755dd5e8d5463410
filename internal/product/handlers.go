package product

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hferreira23/batchwatch/internal/idgen"
	"github.com/hferreira23/batchwatch/internal/validation"
)

// Handler provides HTTP endpoints for product catalog operations.
type Handler struct {
	store Store
}

// NewHandler creates a new product handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes sets up product routes under the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/products", h.ListProducts)
	r.POST("/products", h.CreateProduct)
	r.PUT("/products/:id", h.UpdateProduct)
	r.DELETE("/products/:id", h.DeleteProduct)
}

// ListProducts handles GET /v1/products
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// CreateProduct handles POST /v1/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "name is required",
		})
		return
	}

	if errs := validation.Validate(
		validation.Required("name", req.Name),
		validation.MaxLength("name", req.Name, 255),
		validation.MaxLength("description", req.Description, validation.MaxStringLength),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"details": errs,
		})
		return
	}

	p := &Product{
		ID:          idgen.WithPrefix("prod_"),
		Name:        validation.SanitizeString(req.Name, 255),
		Category:    validation.SanitizeString(req.Category, 100),
		Description: validation.SanitizeString(req.Description, validation.MaxStringLength),
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.store.Create(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": p})
}

// UpdateProduct handles PUT /v1/products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	p, err := h.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Product not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation_failed",
				"message": "name cannot be empty",
			})
			return
		}
		p.Name = validation.SanitizeString(*req.Name, 255)
	}
	if req.Category != nil {
		p.Category = validation.SanitizeString(*req.Category, 100)
	}
	if req.Description != nil {
		p.Description = validation.SanitizeString(*req.Description, validation.MaxStringLength)
	}

	if err := h.store.Update(ctx, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": p})
}

// DeleteProduct handles DELETE /v1/products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Product not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
