// Package telemetry stores the quality signals recorded against a batch:
// automated sensor readings and manual inspections. Both are append-only;
// the risk engine consumes them as its sample history.
package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/hferreira23/batchwatch/internal/pagination"
)

var (
	ErrReadingNotFound = errors.New("telemetry: reading not found")
)

// Microbial test outcomes.
const (
	MicrobialPass    = "PASS"
	MicrobialFail    = "FAIL"
	MicrobialPending = "PENDING"
)

// SensorReading is one automated measurement from a production line sensor.
// Temperature is mandatory, humidity is optional (not every sensor reports it).
type SensorReading struct {
	ID           string    `json:"id"`
	BatchID      string    `json:"batchId"`
	TemperatureC float64   `json:"temperatureC"`
	HumidityPct  *float64  `json:"humidityPct,omitempty"`
	RecordedAt   time.Time `json:"recordedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Inspection is a manual quality check. pH and humidity are optional;
// microbial result is PASS, FAIL or PENDING.
type Inspection struct {
	ID              string    `json:"id"`
	BatchID         string    `json:"batchId"`
	TemperatureC    float64   `json:"temperatureC"`
	HumidityPct     *float64  `json:"humidityPct,omitempty"`
	PH              *float64  `json:"ph,omitempty"`
	MicrobialResult string    `json:"microbialResult"`
	Notes           string    `json:"notes,omitempty"`
	InspectedAt     time.Time `json:"inspectedAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateReadingRequest is the input for recording a sensor reading.
// Temperature is a pointer so a missing field is distinguishable from 0.
type CreateReadingRequest struct {
	BatchID      string     `json:"batchId" binding:"required"`
	TemperatureC *float64   `json:"temperatureC"`
	HumidityPct  *float64   `json:"humidityPct"`
	RecordedAt   *time.Time `json:"recordedAt"`
}

// CreateInspectionRequest is the input for recording an inspection.
type CreateInspectionRequest struct {
	BatchID         string     `json:"batchId" binding:"required"`
	TemperatureC    *float64   `json:"temperatureC"`
	HumidityPct     *float64   `json:"humidityPct"`
	PH              *float64   `json:"ph"`
	MicrobialResult string     `json:"microbialResult"`
	Notes           string     `json:"notes"`
	InspectedAt     *time.Time `json:"inspectedAt"`
}

// Store persists readings and inspections.
type Store interface {
	CreateReading(ctx context.Context, r *SensorReading) error
	// ListReadings returns up to limit+1 readings for the batch, newest
	// first, starting after the cursor. The extra row lets the caller
	// detect another page.
	ListReadings(ctx context.Context, batchID string, cursor *pagination.Cursor, limit int) ([]*SensorReading, error)
	// RecentReadings returns the n most recent readings for the batch,
	// newest first.
	RecentReadings(ctx context.Context, batchID string, n int) ([]*SensorReading, error)
	// AllReadings returns every reading for the batch, oldest first.
	AllReadings(ctx context.Context, batchID string) ([]*SensorReading, error)
	CountReadings(ctx context.Context) (int, error)

	CreateInspection(ctx context.Context, i *Inspection) error
	// ListInspections returns all inspections for the batch, oldest first.
	ListInspections(ctx context.Context, batchID string) ([]*Inspection, error)
	CountInspections(ctx context.Context) (int, error)
}
