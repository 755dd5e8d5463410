package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/hferreira23/batchwatch/internal/idgen"
	"github.com/hferreira23/batchwatch/internal/logging"
	"github.com/hferreira23/batchwatch/internal/metrics"
	"github.com/hferreira23/batchwatch/internal/traces"
)

// anomalyWindow is the number of recent readings the anomaly baseline is
// built from. Older readings describe conditions the batch is no longer in.
const anomalyWindow = 50

// BatchInfo is the slice of a batch the engine needs.
type BatchInfo struct {
	ID        string
	ProductID string
	// Category of the batch's product; selects the pH safe band.
	Category string
}

// BatchDirectory resolves batches. Find returns (nil, nil) for an unknown
// batch.
type BatchDirectory interface {
	Find(ctx context.Context, batchID string) (*BatchInfo, error)
}

// HistorySource supplies a batch's sample history.
type HistorySource interface {
	// Readings returns the batch's full sensor reading history.
	Readings(ctx context.Context, batchID string) ([]Sample, error)
	// RecentReadings returns the n most recent readings.
	RecentReadings(ctx context.Context, batchID string, n int) ([]Sample, error)
	// Inspections returns the batch's full inspection history.
	Inspections(ctx context.Context, batchID string) ([]Sample, error)
}

// RiskWriter overwrites a batch's current risk fields.
type RiskWriter interface {
	UpdateRisk(ctx context.Context, batchID, level string, score float64, explanation string) error
}

// AlertInput is the payload for raising a spoilage alert.
type AlertInput struct {
	BatchID      string
	AssessmentID string
	Level        string
	Score        float64
	Message      string
}

// AlertSink records spoilage alerts. May be nil on a Service.
type AlertSink interface {
	Raise(ctx context.Context, in AlertInput) error
}

// EventSink receives domain events for live subscribers. May be nil.
type EventSink interface {
	Publish(event string, payload any)
}

// Service orchestrates the engine over the persistence layer.
type Service struct {
	engine  *Engine
	batches BatchDirectory
	history HistorySource
	store   Store
	writer  RiskWriter
	alerts  AlertSink
	events  EventSink
}

func NewService(engine *Engine, batches BatchDirectory, history HistorySource, store Store, writer RiskWriter, alerts AlertSink, events EventSink) *Service {
	return &Service{
		engine:  engine,
		batches: batches,
		history: history,
		store:   store,
		writer:  writer,
		alerts:  alerts,
		events:  events,
	}
}

// ComputeBatchRisk scores the batch's full history, persists the assessment,
// overwrites the batch's risk fields, and raises exactly one alert when the
// level is MEDIUM or HIGH.
func (s *Service) ComputeBatchRisk(ctx context.Context, batchID string) (*Assessment, error) {
	ctx, span := traces.StartSpan(ctx, "risk.ComputeBatchRisk", traces.BatchID(batchID))
	defer span.End()

	info, err := s.batches.Find(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("resolve batch: %w", err)
	}
	if info == nil {
		return nil, ErrBatchNotFound
	}

	samples, err := s.collectHistory(ctx, batchID)
	if err != nil {
		return nil, err
	}

	cls := s.engine.Classify(samples, PHBandForCategory(info.Category))
	a := &Assessment{
		ID:          idgen.WithPrefix("risk_"),
		BatchID:     batchID,
		Level:       cls.Level,
		Score:       cls.Score,
		Factors:     cls.Factors,
		Explanation: cls.Explanation,
		EvaluatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateAssessment(ctx, a); err != nil {
		return nil, fmt.Errorf("persist assessment: %w", err)
	}
	if err := s.writer.UpdateRisk(ctx, batchID, string(a.Level), a.Score, a.Explanation); err != nil {
		return nil, fmt.Errorf("update batch risk: %w", err)
	}

	span.SetAttributes(traces.RiskLevel(string(a.Level)), traces.RiskScore(a.Score))
	metrics.RiskAssessmentsTotal.WithLabelValues(string(a.Level)).Inc()
	logging.L(ctx).Info("risk assessed",
		"batch_id", batchID,
		"level", a.Level,
		"score", a.Score,
		"samples", len(samples),
	)

	if a.Level == LevelMedium || a.Level == LevelHigh {
		if err := s.raiseAlert(ctx, a); err != nil {
			// The assessment itself succeeded; a lost alert is logged,
			// not propagated.
			logging.L(ctx).Error("raise alert failed", "batch_id", batchID, "error", err)
		}
	}

	if s.events != nil {
		s.events.Publish("risk_assessment", a)
	}
	return a, nil
}

// AnalyzeReading tests one fresh observation against the batch's recent
// baseline. Advisory only: no alert, nothing persisted.
func (s *Service) AnalyzeReading(ctx context.Context, batchID string, obs Observation) (*AnomalyResult, error) {
	ctx, span := traces.StartSpan(ctx, "risk.AnalyzeReading", traces.BatchID(batchID))
	defer span.End()

	info, err := s.batches.Find(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("resolve batch: %w", err)
	}
	if info == nil {
		return nil, ErrBatchNotFound
	}

	recent, err := s.history.RecentReadings(ctx, batchID, anomalyWindow)
	if err != nil {
		return nil, fmt.Errorf("load recent readings: %w", err)
	}

	baseline := BuildBaseline(recent, s.engine.cfg.MinBaselineSamples)
	result := s.engine.EvaluateObservation(baseline, obs)
	result.BatchID = batchID

	span.SetAttributes(traces.AnomalyScore(result.Score))
	metrics.AnomalyChecksTotal.WithLabelValues(string(result.Level)).Inc()
	return &result, nil
}

// Assessments returns a batch's assessment history, newest first.
func (s *Service) Assessments(ctx context.Context, batchID string) ([]*Assessment, error) {
	info, err := s.batches.Find(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("resolve batch: %w", err)
	}
	if info == nil {
		return nil, ErrBatchNotFound
	}
	return s.store.ListByBatch(ctx, batchID)
}

func (s *Service) collectHistory(ctx context.Context, batchID string) ([]Sample, error) {
	readings, err := s.history.Readings(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("load readings: %w", err)
	}
	inspections, err := s.history.Inspections(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("load inspections: %w", err)
	}
	return append(readings, inspections...), nil
}

func (s *Service) raiseAlert(ctx context.Context, a *Assessment) error {
	if s.alerts == nil {
		return nil
	}
	in := AlertInput{
		BatchID:      a.BatchID,
		AssessmentID: a.ID,
		Level:        string(a.Level),
		Score:        a.Score,
		Message:      a.Explanation,
	}
	if err := s.alerts.Raise(ctx, in); err != nil {
		return err
	}
	metrics.AlertsCreatedTotal.WithLabelValues(string(a.Level)).Inc()
	if s.events != nil {
		s.events.Publish("alert", in)
	}
	return nil
}
