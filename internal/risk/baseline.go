package risk

import "math"

// Spread floors. A batch held at a perfectly constant temperature would
// otherwise have a near-zero spread and turn any measurement noise into an
// enormous deviation.
const (
	DefaultTempSpreadC       = 0.5
	DefaultHumiditySpreadPct = 2.0
)

// Baseline holds per-batch mean/spread statistics for temperature and
// humidity. Humidity statistics cover only the samples that report humidity.
type Baseline struct {
	TempMean   float64
	TempSpread float64
	TempCount  int

	HumidityMean   float64
	HumiditySpread float64
	HumidityCount  int

	// Valid reports whether enough temperature samples exist to trust
	// the statistics.
	Valid bool
}

// BuildBaseline computes baseline statistics from a sample history.
// minSamples is the temperature sample count below which the baseline is
// marked invalid; the statistics are still filled in for whatever is there.
func BuildBaseline(samples []Sample, minSamples int) Baseline {
	var b Baseline

	temps := make([]float64, 0, len(samples))
	var humidities []float64
	for _, s := range samples {
		temps = append(temps, s.TemperatureC)
		if s.HumidityPct != nil {
			humidities = append(humidities, *s.HumidityPct)
		}
	}

	b.TempCount = len(temps)
	b.TempMean, b.TempSpread = meanSpread(temps, DefaultTempSpreadC)
	b.HumidityCount = len(humidities)
	b.HumidityMean, b.HumiditySpread = meanSpread(humidities, DefaultHumiditySpreadPct)
	b.Valid = b.TempCount >= minSamples
	return b
}

// meanSpread returns the mean and the sample standard deviation floored at
// floor. Fewer than two values yield the floor itself.
func meanSpread(values []float64, floor float64) (float64, float64) {
	if len(values) == 0 {
		return 0, floor
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if len(values) < 2 {
		return mean, floor
	}

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	spread := math.Sqrt(sq / float64(len(values)-1))
	if spread < floor {
		spread = floor
	}
	return mean, spread
}
