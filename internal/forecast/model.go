package forecast

import (
	"errors"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/marketpulse/trade-coin/backend/internal/models"
)

// ErrNoObservations is returned when a model is asked to forecast an empty
// series.
var ErrNoObservations = errors.New("no observations to fit")

// TrendModel produces a forecast for one index from its historical
// observations. The returned points cover every observed date (fitted values)
// plus horizon daily steps strictly after the last observed date, sorted
// ascending with no duplicate dates.
type TrendModel interface {
	Forecast(obs []models.Observation, horizon int) ([]models.ForecastPoint, error)
}

// LinearTrendModel is an additive trend model: an ordinary least squares line
// over the day index, plus a weekday seasonal component estimated from the
// residual means. It is a deliberately simple stand-in for heavier
// time-series libraries and behaves sensibly on daily index data.
type LinearTrendModel struct{}

func NewLinearTrendModel() *LinearTrendModel {
	return &LinearTrendModel{}
}

func (m *LinearTrendModel) Forecast(obs []models.Observation, horizon int) ([]models.ForecastPoint, error) {
	if len(obs) == 0 {
		return nil, ErrNoObservations
	}

	origin := obs[0].Date
	xs := make([]float64, len(obs))
	ys := make([]float64, len(obs))
	for i, o := range obs {
		xs[i] = dayIndex(origin, o.Date)
		ys[i] = o.Value
	}

	var alpha, beta float64
	if len(obs) < 2 {
		// A single observation has no slope to estimate.
		alpha, beta = ys[0], 0
	} else {
		alpha, beta = stat.LinearRegression(xs, ys, nil, false)
	}

	// Weekday seasonality from residual means. With a single observation the
	// residual is zero by construction and the seasonal terms vanish.
	var seasonal [7]float64
	var counts [7]int
	for i, o := range obs {
		resid := ys[i] - (alpha + beta*xs[i])
		wd := int(o.Date.Weekday())
		seasonal[wd] += resid
		counts[wd]++
	}
	for wd := range seasonal {
		if counts[wd] > 0 {
			seasonal[wd] /= float64(counts[wd])
		}
	}

	predict := func(t time.Time) float64 {
		return alpha + beta*dayIndex(origin, t) + seasonal[int(t.Weekday())]
	}

	points := make([]models.ForecastPoint, 0, len(obs)+horizon)
	for _, o := range obs {
		points = append(points, models.ForecastPoint{Date: o.Date, Yhat: predict(o.Date)})
	}
	last := obs[len(obs)-1].Date
	for i := 1; i <= horizon; i++ {
		t := last.AddDate(0, 0, i)
		points = append(points, models.ForecastPoint{Date: t, Yhat: predict(t)})
	}
	return points, nil
}

func dayIndex(origin, t time.Time) float64 {
	return t.Sub(origin).Hours() / 24
}
