package server

import (
	"context"
	"errors"
	"time"

	"github.com/hferreira23/batchwatch/internal/alerts"
	"github.com/hferreira23/batchwatch/internal/batch"
	"github.com/hferreira23/batchwatch/internal/idgen"
	"github.com/hferreira23/batchwatch/internal/product"
	"github.com/hferreira23/batchwatch/internal/risk"
	"github.com/hferreira23/batchwatch/internal/telemetry"
)

// Adapters bridging the narrow interfaces each domain package declares onto
// the concrete stores. Keeping them here avoids import cycles between the
// domain packages.

// productDirectory lets the batch handlers check product existence.
type productDirectory struct {
	store product.Store
}

func (d *productDirectory) Exists(ctx context.Context, productID string) (bool, error) {
	_, err := d.store.Get(ctx, productID)
	if errors.Is(err, product.ErrProductNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// batchChecker lets the telemetry handlers check batch existence.
type batchChecker struct {
	store batch.Store
}

func (d *batchChecker) Exists(ctx context.Context, batchID string) (bool, error) {
	_, err := d.store.Get(ctx, batchID)
	if errors.Is(err, batch.ErrBatchNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// batchDirectory resolves a batch and its product category for the risk
// service. A missing batch resolves to (nil, nil).
type batchDirectory struct {
	batches  batch.Store
	products product.Store
}

func (d *batchDirectory) Find(ctx context.Context, batchID string) (*risk.BatchInfo, error) {
	b, err := d.batches.Get(ctx, batchID)
	if errors.Is(err, batch.ErrBatchNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	info := &risk.BatchInfo{ID: b.ID, ProductID: b.ProductID}
	p, err := d.products.Get(ctx, b.ProductID)
	if err == nil {
		info.Category = p.Category
	} else if !errors.Is(err, product.ErrProductNotFound) {
		return nil, err
	}
	return info, nil
}

// historySource converts telemetry records into engine samples.
type historySource struct {
	store telemetry.Store
}

func (h *historySource) Readings(ctx context.Context, batchID string) ([]risk.Sample, error) {
	readings, err := h.store.AllReadings(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return readingSamples(readings), nil
}

func (h *historySource) RecentReadings(ctx context.Context, batchID string, n int) ([]risk.Sample, error) {
	readings, err := h.store.RecentReadings(ctx, batchID, n)
	if err != nil {
		return nil, err
	}
	return readingSamples(readings), nil
}

func (h *historySource) Inspections(ctx context.Context, batchID string) ([]risk.Sample, error) {
	inspections, err := h.store.ListInspections(ctx, batchID)
	if err != nil {
		return nil, err
	}
	samples := make([]risk.Sample, 0, len(inspections))
	for _, insp := range inspections {
		samples = append(samples, risk.Sample{
			TemperatureC: insp.TemperatureC,
			HumidityPct:  insp.HumidityPct,
			PH:           insp.PH,
			Microbial:    insp.MicrobialResult,
		})
	}
	return samples, nil
}

func readingSamples(readings []*telemetry.SensorReading) []risk.Sample {
	samples := make([]risk.Sample, 0, len(readings))
	for _, r := range readings {
		samples = append(samples, risk.Sample{
			TemperatureC: r.TemperatureC,
			HumidityPct:  r.HumidityPct,
		})
	}
	return samples
}

// alertSink persists alerts raised by the risk service.
type alertSink struct {
	store alerts.Store
}

func (s *alertSink) Raise(ctx context.Context, in risk.AlertInput) error {
	return s.store.Create(ctx, &alerts.Alert{
		ID:           idgen.WithPrefix("alert_"),
		BatchID:      in.BatchID,
		AssessmentID: in.AssessmentID,
		Level:        in.Level,
		Score:        in.Score,
		Message:      in.Message,
		CreatedAt:    time.Now().UTC(),
	})
}

// batchView exposes the updated batch in compute-risk responses.
type batchView struct {
	store batch.Store
}

func (v *batchView) View(ctx context.Context, batchID string) (any, error) {
	return v.store.Get(ctx, batchID)
}
