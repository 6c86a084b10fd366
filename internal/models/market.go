package models

import (
	"time"
)

// Observation is one row of the historical index dataset: the closing value
// of one index on one day. Immutable once loaded.
type Observation struct {
	Entity string    `json:"entity"`
	Date   time.Time `json:"date"`
	Value  float64   `json:"value"`
}

// ForecastPoint is one predicted value in a per-index forecast artifact.
// The JSON names follow the artifact column names (ds, yhat).
type ForecastPoint struct {
	Date time.Time `json:"-"`
	Yhat float64   `json:"yhat"`
}

// ForecastPointJSON is the wire shape for a forecast row.
type ForecastPointJSON struct {
	DS   string  `json:"ds"`
	Yhat float64 `json:"yhat"`
}

// Wire formats a ForecastPoint for the API response.
func (p ForecastPoint) Wire() ForecastPointJSON {
	return ForecastPointJSON{
		DS:   p.Date.Format("2006-01-02"),
		Yhat: p.Yhat,
	}
}

// PriceHistory is the API response for a single index's raw price series:
// parallel arrays sorted by date ascending.
type PriceHistory struct {
	Dates  []string  `json:"dates"`
	Prices []float64 `json:"prices"`
}
