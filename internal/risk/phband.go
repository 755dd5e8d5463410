package risk

import "strings"

// PHBand is the safe pH range for a product category.
type PHBand struct {
	Low  float64
	High float64
}

// Contains reports whether ph lies inside the band, inclusive.
func (b PHBand) Contains(ph float64) bool {
	return ph >= b.Low && ph <= b.High
}

// defaultPHBand covers products with no recognised category.
var defaultPHBand = PHBand{Low: 4.0, High: 7.5}

var phBands = map[string]PHBand{
	"dairy":    {Low: 6.4, High: 6.8},
	"meat":     {Low: 5.4, High: 6.2},
	"seafood":  {Low: 5.8, High: 6.8},
	"bakery":   {Low: 4.5, High: 7.5},
	"beverage": {Low: 2.5, High: 4.5},
}

// PHBandForCategory returns the safe pH band for a product category,
// case-insensitive. Unrecognised categories get a wide default band.
func PHBandForCategory(category string) PHBand {
	if b, ok := phBands[strings.ToLower(strings.TrimSpace(category))]; ok {
		return b
	}
	return defaultPHBand
}
