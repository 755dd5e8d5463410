package risk

import (
	"fmt"
	"math"
)

// EvaluateObservation tests one fresh observation against a batch baseline.
// The score is the largest per-dimension deviation in spread units, rounded
// to two decimals. An invalid baseline yields UNKNOWN and never an anomaly:
// the engine refuses to guess from insufficient history.
func (e *Engine) EvaluateObservation(baseline Baseline, obs Observation) AnomalyResult {
	if !baseline.Valid {
		return AnomalyResult{
			IsAnomaly: false,
			Level:     LevelUnknown,
			Score:     0,
			Message:   fmt.Sprintf("insufficient history: %d of %d required samples", baseline.TempCount, e.cfg.MinBaselineSamples),
		}
	}

	tempZ := math.Abs(obs.TemperatureC-baseline.TempMean) / baseline.TempSpread
	score := tempZ
	dimension := "temperature"

	// The humidity dimension participates only when both the observation
	// and the baseline carry humidity data.
	if obs.HumidityPct != nil && baseline.HumidityCount > 0 {
		humidityZ := math.Abs(*obs.HumidityPct-baseline.HumidityMean) / baseline.HumiditySpread
		if humidityZ > score {
			score = humidityZ
			dimension = "humidity"
		}
	}

	score = math.Round(score*100) / 100

	var level Level
	var message string
	switch {
	case score >= e.cfg.AnomalyHighZ:
		level = LevelHigh
		message = fmt.Sprintf("%s deviates %.2f spread units from baseline", dimension, score)
	case score >= e.cfg.AnomalyThreshold:
		level = LevelMedium
		message = fmt.Sprintf("%s deviates %.2f spread units from baseline", dimension, score)
	default:
		level = LevelNormal
		message = "within normal variation"
	}

	return AnomalyResult{
		IsAnomaly: score >= e.cfg.AnomalyThreshold,
		Level:     level,
		Score:     score,
		Message:   message,
	}
}
