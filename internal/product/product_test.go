package product

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p := &Product{
		ID:        "prod_1",
		Name:      "Natural Yoghurt 500ml",
		Category:  "Dairy",
		CreatedAt: time.Now(),
	}

	err := store.Create(ctx, p)
	require.NoError(t, err)

	got, err := store.Get(ctx, "prod_1")
	require.NoError(t, err)
	assert.Equal(t, "Natural Yoghurt 500ml", got.Name)
	assert.Equal(t, "Dairy", got.Category)

	got.Name = "Greek Yoghurt 500ml"
	require.NoError(t, store.Update(ctx, got))

	got2, _ := store.Get(ctx, "prod_1")
	assert.Equal(t, "Greek Yoghurt 500ml", got2.Name)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.Delete(ctx, "prod_1"))
	_, err = store.Get(ctx, "prod_1")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrProductNotFound)

	err = store.Update(ctx, &Product{ID: "nonexistent"})
	assert.ErrorIs(t, err, ErrProductNotFound)

	err = store.Delete(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStore_ListOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Now()
	for i, name := range []string{"first", "second", "third"} {
		require.NoError(t, store.Create(ctx, &Product{
			ID:        name,
			Name:      name,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].ID)
	assert.Equal(t, "third", list[2].ID)
}

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(store).RegisterRoutes(r.Group("/v1"))
	return r
}

func TestHandler_CreateProduct(t *testing.T) {
	router := newTestRouter(NewMemoryStore())

	body, _ := json.Marshal(map[string]string{
		"name":     "Smoked Salmon",
		"category": "Seafood",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Product Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Product.ID)
	assert.Equal(t, "Smoked Salmon", resp.Product.Name)
}

func TestHandler_CreateProduct_MissingName(t *testing.T) {
	router := newTestRouter(NewMemoryStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/products", bytes.NewReader([]byte(`{"category":"Dairy"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_UpdateProduct_NotFound(t *testing.T) {
	router := newTestRouter(NewMemoryStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/v1/products/prod_missing", bytes.NewReader([]byte(`{"name":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_DeleteProduct(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), &Product{ID: "prod_x", Name: "x"}))

	router := newTestRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/v1/products/prod_x", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("DELETE", "/v1/products/prod_x", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
