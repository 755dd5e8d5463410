// Package batch manages production batches and their current spoilage risk state.
//
// A batch carries the latest risk assessment as three denormalized fields
// (level, score, explanation) with overwrite semantics: recomputing risk
// replaces them. The append-only assessment history lives in the risk package.
package batch

import (
	"context"
	"errors"
	"time"
)

var (
	ErrBatchNotFound = errors.New("batch: not found")
)

// Lifecycle states for a production batch.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusRejected   = "REJECTED"
)

// RiskUnknown is the risk level of a batch that has never been assessed
// or has no usable data.
const RiskUnknown = "UNKNOWN"

// Batch is a single production run of a product.
type Batch struct {
	ID              string     `json:"id"`
	ProductID       string     `json:"productId"`
	Code            string     `json:"code"`
	Status          string     `json:"status"`
	LineID          string     `json:"lineId,omitempty"`
	RiskLevel       string     `json:"riskLevel"`
	RiskScore       float64    `json:"riskScore"`
	RiskExplanation string     `json:"riskExplanation,omitempty"`
	StartedAt       time.Time  `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// CreateRequest is the input for starting a batch.
type CreateRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Code      string `json:"code"`
	Status    string `json:"status"`
	LineID    string `json:"lineId"`
}

// UpdateRequest carries the mutable batch fields. Nil pointers mean
// "leave unchanged". Risk fields are not updatable through this path;
// only the risk engine writes them.
type UpdateRequest struct {
	Status  *string    `json:"status"`
	LineID  *string    `json:"lineId"`
	EndedAt *time.Time `json:"endedAt"`
}

// Store persists batch data.
type Store interface {
	Create(ctx context.Context, b *Batch) error
	Get(ctx context.Context, id string) (*Batch, error)
	List(ctx context.Context) ([]*Batch, error)
	Update(ctx context.Context, b *Batch) error
	Delete(ctx context.Context, id string) error

	// UpdateRisk overwrites the batch's current risk fields.
	// Last write wins; each assessment derives from the full history,
	// so no read-modify-write dependency exists.
	UpdateRisk(ctx context.Context, id, level string, score float64, explanation string) error

	// CountByRiskLevel returns batch counts keyed by risk level.
	CountByRiskLevel(ctx context.Context) (map[string]int, error)
	Count(ctx context.Context) (int, error)
}
