package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hferreira23/batchwatch/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testConfig returns a minimal config for testing (in-memory storage)
func testConfig() *config.Config {
	return &config.Config{
		Port:                 "0",
		Env:                  "development",
		LogLevel:             "error",
		MaxSafeTempC:         5.0,
		WarnTempC:            8.0,
		MaxSafeHumidityPct:   70.0,
		RiskMediumThreshold:  0.30,
		RiskHighThreshold:    0.60,
		AnomalyThreshold:     3.0,
		AnomalyHighThreshold: 6.0,
		MinBaselineSamples:   3,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(testConfig())
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return s
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *strings.Reader
	if body == "" {
		r = strings.NewReader("")
	} else {
		r = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	s.router.ServeHTTP(w, req)
	return w
}

// ---------------------------------------------------------------------------
// Health endpoint tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}
}

func TestLivenessEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/health/live", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestReadinessEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/health/ready", "")
	// Server hasn't called Run() so ready is false
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 (not ready), got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// Route registration tests
// ---------------------------------------------------------------------------

func TestRoutesRegistered(t *testing.T) {
	s := newTestServer(t)

	routes := s.router.Routes()
	routeSet := make(map[string]bool)
	for _, route := range routes {
		routeSet[route.Method+":"+route.Path] = true
	}

	expected := []string{
		"GET:/health",
		"GET:/health/live",
		"GET:/health/ready",
		"GET:/metrics",
		"GET:/ws",
		"GET:/v1/products",
		"POST:/v1/products",
		"GET:/v1/batches",
		"POST:/v1/batches",
		"GET:/v1/batches/:id",
		"PUT:/v1/batches/:id",
		"DELETE:/v1/batches/:id",
		"POST:/v1/sensor-readings",
		"GET:/v1/batches/:id/sensor-readings",
		"POST:/v1/inspections",
		"GET:/v1/batches/:id/inspections",
		"GET:/v1/alerts",
		"GET:/v1/batches/:id/alerts",
		"POST:/v1/batches/:id/compute-risk",
		"GET:/v1/batches/:id/risk-assessments",
		"POST:/v1/sensor/analyze/batch/:id",
		"GET:/v1/dashboard/summary",
	}

	for _, e := range expected {
		if !routeSet[e] {
			t.Errorf("Route %s not registered", e)
		}
	}
}

func TestNotFoundRoute(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "GET", "/v1/nonexistent", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// End-to-end flow through the wired stores
// ---------------------------------------------------------------------------

func TestProductionFlow(t *testing.T) {
	s := newTestServer(t)

	// Create a product
	w := doJSON(t, s, "POST", "/v1/products",
		`{"name":"Whole Milk","category":"dairy"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating product, got %d: %s", w.Code, w.Body.String())
	}
	var prodResp struct {
		Product struct {
			ID string `json:"id"`
		} `json:"product"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &prodResp); err != nil {
		t.Fatalf("Failed to parse product: %v", err)
	}
	productID := prodResp.Product.ID
	if productID == "" {
		t.Fatal("Expected product id in response")
	}

	// Create a batch for it
	w = doJSON(t, s, "POST", "/v1/batches",
		fmt.Sprintf(`{"productId":%q,"code":"LOT-100"}`, productID))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating batch, got %d: %s", w.Code, w.Body.String())
	}
	var b map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatalf("Failed to parse batch: %v", err)
	}
	batchID, _ := b["id"].(string)
	if batchID == "" {
		t.Fatal("Expected batch id in response")
	}
	if b["riskLevel"] != "UNKNOWN" {
		t.Errorf("Expected new batch risk level UNKNOWN, got %v", b["riskLevel"])
	}

	// Record a temperature excursion
	w = doJSON(t, s, "POST", "/v1/sensor-readings",
		fmt.Sprintf(`{"batchId":%q,"temperatureC":12.5}`, batchID))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating reading, got %d: %s", w.Code, w.Body.String())
	}

	// Record a failed inspection
	w = doJSON(t, s, "POST", "/v1/inspections",
		fmt.Sprintf(`{"batchId":%q,"temperatureC":11.0,"microbialResult":"FAIL"}`, batchID))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating inspection, got %d: %s", w.Code, w.Body.String())
	}

	// Compute risk: microbial FAIL forces HIGH
	w = doJSON(t, s, "POST", "/v1/batches/"+batchID+"/compute-risk", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 computing risk, got %d: %s", w.Code, w.Body.String())
	}
	var riskResp struct {
		Assessment struct {
			Level string  `json:"level"`
			Score float64 `json:"score"`
		} `json:"assessment"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &riskResp); err != nil {
		t.Fatalf("Failed to parse risk response: %v", err)
	}
	if riskResp.Assessment.Level != "HIGH" {
		t.Errorf("Expected HIGH risk after failed microbial test, got %s", riskResp.Assessment.Level)
	}

	// Risk level is written back to the batch
	w = doJSON(t, s, "GET", "/v1/batches/"+batchID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 fetching batch, got %d", w.Code)
	}
	b = map[string]interface{}{}
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatalf("Failed to parse batch: %v", err)
	}
	if b["riskLevel"] != "HIGH" {
		t.Errorf("Expected batch risk level HIGH after compute, got %v", b["riskLevel"])
	}

	// A HIGH assessment raises an alert
	w = doJSON(t, s, "GET", "/v1/batches/"+batchID+"/alerts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing alerts, got %d", w.Code)
	}
	var alertResp struct {
		Alerts []struct {
			Level string `json:"level"`
		} `json:"alerts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &alertResp); err != nil {
		t.Fatalf("Failed to parse alerts: %v", err)
	}
	if len(alertResp.Alerts) != 1 {
		t.Fatalf("Expected exactly one alert, got %d", len(alertResp.Alerts))
	}
	if alertResp.Alerts[0].Level != "HIGH" {
		t.Errorf("Expected HIGH alert, got %s", alertResp.Alerts[0].Level)
	}

	// Dashboard counts reflect the flow
	w = doJSON(t, s, "GET", "/v1/dashboard/summary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for dashboard summary, got %d", w.Code)
	}
	var summary struct {
		TotalProducts int            `json:"totalProducts"`
		TotalBatches  int            `json:"totalBatches"`
		TotalReadings int            `json:"totalReadings"`
		TotalAlerts   int            `json:"totalAlerts"`
		BatchesByRisk map[string]int `json:"batchesByRisk"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to parse summary: %v", err)
	}
	if summary.TotalProducts != 1 || summary.TotalBatches != 1 {
		t.Errorf("Expected 1 product and 1 batch, got %d/%d", summary.TotalProducts, summary.TotalBatches)
	}
	if summary.TotalReadings != 1 {
		t.Errorf("Expected 1 reading, got %d", summary.TotalReadings)
	}
	if summary.TotalAlerts != 1 {
		t.Errorf("Expected 1 alert, got %d", summary.TotalAlerts)
	}
	if summary.BatchesByRisk["HIGH"] != 1 {
		t.Errorf("Expected 1 HIGH batch, got %d", summary.BatchesByRisk["HIGH"])
	}
}

func TestAnomalyEndpointThroughServer(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, "POST", "/v1/products", `{"name":"Yogurt","category":"dairy"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}
	var prodResp struct {
		Product struct {
			ID string `json:"id"`
		} `json:"product"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &prodResp)
	productID := prodResp.Product.ID

	w = doJSON(t, s, "POST", "/v1/batches", fmt.Sprintf(`{"productId":%q}`, productID))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}
	var b map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &b)
	batchID := b["id"].(string)

	// Not enough history yet
	w = doJSON(t, s, "POST", "/v1/sensor/analyze/batch/"+batchID, `{"temperature":4.0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 analyzing, got %d: %s", w.Code, w.Body.String())
	}
	var res map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("Failed to parse anomaly result: %v", err)
	}
	if res["level"] != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN with no history, got %v", res["level"])
	}

	// Build a stable baseline
	for _, temp := range []float64{3.5, 4.5, 3.5, 4.5, 4.0} {
		w = doJSON(t, s, "POST", "/v1/sensor-readings",
			fmt.Sprintf(`{"batchId":%q,"temperatureC":%g}`, batchID, temp))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201 recording reading, got %d", w.Code)
		}
	}

	// 9.5C is eleven spread units above the 4.0 mean
	w = doJSON(t, s, "POST", "/v1/sensor/analyze/batch/"+batchID, `{"temperature":9.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 analyzing, got %d: %s", w.Code, w.Body.String())
	}
	res = map[string]interface{}{}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("Failed to parse anomaly result: %v", err)
	}
	if res["is_anomaly"] != true {
		t.Errorf("Expected anomaly, got %v", res)
	}
	if res["level"] != "HIGH" {
		t.Errorf("Expected HIGH anomaly level, got %v", res["level"])
	}
}
