package risk

import (
	"fmt"
	"math"
	"strings"
)

// Factor values for the banded signals.
const (
	tempFactorSafe     = 0.1
	tempFactorWarn     = 0.4
	tempFactorOver     = 0.8
	humidityFactorOK   = 0.1
	humidityFactorOver = 0.6
	phFactorInBand     = 0.1
	phFactorOutside    = 0.7
)

// Factor weights, renormalized over the factors actually present so a
// history without humidity or pH data narrows the score instead of
// diluting it.
const (
	weightTempBand      = 0.45
	weightHumidityBand  = 0.20
	weightTempDeviation = 0.20
	weightPH            = 0.15
)

// deviationNoteZ is the spread-unit deviation at which the classifier's
// explanation starts mentioning baseline deviation. It belongs to the
// classifier alone; the point-in-time anomaly evaluator keeps its own
// configurable threshold.
const deviationNoteZ = 3.0

// Engine evaluates batch histories and single observations against a fixed
// set of thresholds.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Classification is the outcome of scoring a batch history.
type Classification struct {
	Level       Level
	Score       float64
	Factors     map[string]float64
	Explanation string
}

// Classify scores a batch's full sample history. With no samples at all the
// level is UNKNOWN and the score zero; any data at all produces an ordered
// level. A microbial FAIL anywhere in the history forces HIGH regardless of
// the composite score.
func (e *Engine) Classify(samples []Sample, phBand PHBand) Classification {
	if len(samples) == 0 {
		return Classification{
			Level:       LevelUnknown,
			Score:       0,
			Factors:     map[string]float64{},
			Explanation: "no readings or inspections recorded",
		}
	}

	maxTemp := samples[0].TemperatureC
	var maxHumidity float64
	humiditySeen := false
	phOutside := false
	var worstPH float64
	phSeen := false
	microbialFail := false

	for _, s := range samples {
		if s.TemperatureC > maxTemp {
			maxTemp = s.TemperatureC
		}
		if s.HumidityPct != nil {
			if !humiditySeen || *s.HumidityPct > maxHumidity {
				maxHumidity = *s.HumidityPct
			}
			humiditySeen = true
		}
		if s.PH != nil {
			phSeen = true
			if !phBand.Contains(*s.PH) {
				if !phOutside || phDistance(phBand, *s.PH) > phDistance(phBand, worstPH) {
					worstPH = *s.PH
				}
				phOutside = true
			}
		}
		if strings.EqualFold(s.Microbial, "FAIL") {
			microbialFail = true
		}
	}

	factors := make(map[string]float64)
	var reasons []string

	// Temperature band against the cold-chain limits.
	switch {
	case maxTemp <= e.cfg.MaxSafeTempC:
		factors["temp_band"] = tempFactorSafe
	case maxTemp <= e.cfg.WarnTempC:
		factors["temp_band"] = tempFactorWarn
		reasons = append(reasons, fmt.Sprintf("temperature %.1fC above safe limit %.1fC", maxTemp, e.cfg.MaxSafeTempC))
	default:
		factors["temp_band"] = tempFactorOver
		reasons = append(reasons, fmt.Sprintf("temperature %.1fC exceeds warning threshold %.1fC", maxTemp, e.cfg.WarnTempC))
	}

	if humiditySeen {
		if maxHumidity <= e.cfg.MaxSafeHumidityPct {
			factors["humidity_band"] = humidityFactorOK
		} else {
			factors["humidity_band"] = humidityFactorOver
			reasons = append(reasons, fmt.Sprintf("humidity %.1f%%RH above safe limit %.1f%%RH", maxHumidity, e.cfg.MaxSafeHumidityPct))
		}
	}

	// Deviation of the hottest sample from the batch's own baseline.
	baseline := BuildBaseline(samples, e.cfg.MinBaselineSamples)
	z := math.Abs(maxTemp-baseline.TempMean) / baseline.TempSpread
	factors["temp_deviation"] = math.Min(z/6, 1)
	if z >= deviationNoteZ {
		reasons = append(reasons, fmt.Sprintf("temperature deviates %.1f spread units from batch baseline", z))
	}

	if phSeen {
		if phOutside {
			factors["ph"] = phFactorOutside
			reasons = append(reasons, fmt.Sprintf("pH %.1f outside safe band %.1f-%.1f", worstPH, phBand.Low, phBand.High))
		} else {
			factors["ph"] = phFactorInBand
		}
	}

	score := weightedScore(factors)
	level := e.levelFor(score)

	if microbialFail {
		factors["microbial"] = 1.0
		level = LevelHigh
		if score < e.cfg.HighThreshold {
			score = e.cfg.HighThreshold
		}
		reasons = append(reasons, "microbial test failed")
	}

	explanation := "all signals within safe limits"
	if len(reasons) > 0 {
		explanation = strings.Join(reasons, "; ")
	}

	return Classification{
		Level:       level,
		Score:       score,
		Factors:     factors,
		Explanation: explanation,
	}
}

func (e *Engine) levelFor(score float64) Level {
	switch {
	case score >= e.cfg.HighThreshold:
		return LevelHigh
	case score >= e.cfg.MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// weightedScore combines the present factors, renormalizing the weights so
// they always sum to one.
func weightedScore(factors map[string]float64) float64 {
	weights := map[string]float64{
		"temp_band":      weightTempBand,
		"humidity_band":  weightHumidityBand,
		"temp_deviation": weightTempDeviation,
		"ph":             weightPH,
	}

	var sum, totalWeight float64
	for name, value := range factors {
		w, ok := weights[name]
		if !ok {
			continue
		}
		sum += value * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return sum / totalWeight
}

// phDistance measures how far outside the band a pH value falls.
func phDistance(band PHBand, ph float64) float64 {
	if ph < band.Low {
		return band.Low - ph
	}
	if ph > band.High {
		return ph - band.High
	}
	return 0
}
