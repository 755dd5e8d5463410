package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCount(n int) func(ctx context.Context) (int, error) {
	return func(ctx context.Context) (int, error) { return n, nil }
}

func TestSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(Counters{
		Products:    fixedCount(4),
		Batches:     fixedCount(9),
		Readings:    fixedCount(120),
		Inspections: fixedCount(7),
		Alerts:      fixedCount(3),
		BatchesRisk: func(ctx context.Context) (map[string]int, error) {
			return map[string]int{"LOW": 5, "HIGH": 1, "UNKNOWN": 3}, nil
		},
	}).RegisterRoutes(r)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var s Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, 4, s.TotalProducts)
	assert.Equal(t, 9, s.TotalBatches)
	assert.Equal(t, 120, s.TotalReadings)
	assert.Equal(t, 3, s.TotalAlerts)
	assert.Equal(t, 5, s.BatchesByRisk["LOW"])
	assert.Equal(t, 1, s.BatchesByRisk["HIGH"])
	// Empty buckets still present.
	assert.Contains(t, s.BatchesByRisk, "MEDIUM")
	assert.Equal(t, 0, s.BatchesByRisk["MEDIUM"])
}

func TestSummaryCountError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(Counters{
		Products:    func(ctx context.Context) (int, error) { return 0, errors.New("db down") },
		Batches:     fixedCount(0),
		Readings:    fixedCount(0),
		Inspections: fixedCount(0),
		Alerts:      fixedCount(0),
		BatchesRisk: func(ctx context.Context) (map[string]int, error) { return nil, nil },
	}).RegisterRoutes(r)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
