// Package risk implements the spoilage risk and anomaly engine.
//
// Two evaluation paths share the same baseline statistics:
//
//   - Classify scores a batch's full reading+inspection history into an
//     ordered risk level (LOW < MEDIUM < HIGH) with a [0,1] composite score.
//   - EvaluateObservation tests one fresh sensor observation against the
//     batch's recent baseline and flags statistical outliers. It is advisory:
//     nothing is persisted and no alert is raised.
//
// Both are deterministic: the same history and inputs always produce the
// same result.
package risk

import (
	"context"
	"errors"
	"time"
)

var (
	ErrBatchNotFound = errors.New("risk: batch not found")
)

// Level is an ordered risk severity.
type Level string

const (
	LevelLow     Level = "LOW"
	LevelMedium  Level = "MEDIUM"
	LevelHigh    Level = "HIGH"
	LevelUnknown Level = "UNKNOWN"

	// LevelNormal is the non-anomalous outcome of a point-in-time check.
	LevelNormal Level = "NORMAL"
)

// Sample is one historical data point. Sensor readings carry temperature and
// optionally humidity; inspections may add pH and a microbial result.
type Sample struct {
	TemperatureC float64
	HumidityPct  *float64
	PH           *float64
	Microbial    string // PASS, FAIL, PENDING, or empty for sensor readings
}

// Observation is one fresh measurement to test against a batch baseline.
type Observation struct {
	TemperatureC float64
	HumidityPct  *float64
}

// Assessment is the persisted outcome of one batch risk computation.
type Assessment struct {
	ID          string             `json:"id"`
	BatchID     string             `json:"batchId"`
	Level       Level              `json:"level"`
	Score       float64            `json:"score"`
	Factors     map[string]float64 `json:"factors"`
	Explanation string             `json:"explanation"`
	EvaluatedAt time.Time          `json:"evaluatedAt"`
}

// AnomalyResult is the outcome of a point-in-time anomaly check.
// Score is the largest per-dimension deviation in spread units; it is not
// bounded to [0,1] like the classifier's composite score.
type AnomalyResult struct {
	BatchID   string  `json:"batchId"`
	IsAnomaly bool    `json:"is_anomaly"`
	Level     Level   `json:"level"`
	Score     float64 `json:"score"`
	Message   string  `json:"message"`
}

// Config holds the engine thresholds. See DefaultConfig for the cold-chain
// defaults; all values are overridable through the service configuration.
type Config struct {
	MaxSafeTempC       float64
	WarnTempC          float64
	MaxSafeHumidityPct float64
	MediumThreshold    float64
	HighThreshold      float64
	AnomalyThreshold   float64
	AnomalyHighZ       float64
	MinBaselineSamples int
}

// DefaultConfig returns thresholds for a refrigerated production line.
func DefaultConfig() Config {
	return Config{
		MaxSafeTempC:       5.0,
		WarnTempC:          8.0,
		MaxSafeHumidityPct: 70.0,
		MediumThreshold:    0.30,
		HighThreshold:      0.60,
		AnomalyThreshold:   3.0,
		AnomalyHighZ:       6.0,
		MinBaselineSamples: 3,
	}
}

// Store persists the append-only assessment history.
type Store interface {
	CreateAssessment(ctx context.Context, a *Assessment) error
	// ListByBatch returns a batch's assessments, newest first.
	ListByBatch(ctx context.Context, batchID string) ([]*Assessment, error)
}
