// Package alerts records spoilage alerts raised by the risk engine.
//
// Alerts are append-only and never deduplicated: every MEDIUM or HIGH risk
// assessment produces exactly one alert, even when the level is unchanged.
// Operators reconcile repeats downstream.
package alerts

import (
	"context"
	"errors"
	"time"

	"github.com/hferreira23/batchwatch/internal/pagination"
)

var (
	ErrAlertNotFound = errors.New("alerts: not found")
)

// Alert is one spoilage warning tied to a risk assessment.
type Alert struct {
	ID           string    `json:"id"`
	BatchID      string    `json:"batchId"`
	AssessmentID string    `json:"assessmentId,omitempty"`
	Level        string    `json:"level"`
	Score        float64   `json:"score"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store persists alerts.
type Store interface {
	Create(ctx context.Context, a *Alert) error
	// List returns up to limit+1 alerts, newest first, starting after the
	// cursor. The extra row lets the caller detect another page.
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*Alert, error)
	// ListByBatch returns all alerts for a batch, newest first.
	ListByBatch(ctx context.Context, batchID string) ([]*Alert, error)
	Count(ctx context.Context) (int, error)
}
