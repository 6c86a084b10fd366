package services

import (
	"errors"
	"log"
	"sort"

	"github.com/marketpulse/trade-coin/backend/internal/forecast"
	"github.com/marketpulse/trade-coin/backend/internal/models"
)

var (
	// ErrDataUnavailable means the historical dataset failed to load at
	// startup; the server keeps running but history queries return 500.
	ErrDataUnavailable = errors.New("stock data not available")

	ErrEntityNotFound = errors.New("no data for entity")
)

// MarketDataService serves raw price history queries over the historical
// dataset. The dataset is loaded and validated once at construction and never
// mutated afterwards; handlers receive the service explicitly rather than
// reading package-level state.
type MarketDataService struct {
	dataset *forecast.Dataset
}

// NewMarketDataService loads the dataset from path. A load failure is logged
// and produces a service in the unavailable state rather than an error, so
// the account and forecast endpoints keep working without the dataset.
func NewMarketDataService(path string) *MarketDataService {
	ds, err := forecast.LoadDataset(path)
	if err != nil {
		log.Printf("Market data: failed to load dataset %s: %v", path, err)
		return &MarketDataService{}
	}
	log.Printf("Market data: loaded %d entities from %s", len(ds.Entities()), path)
	return &MarketDataService{dataset: ds}
}

// NewMarketDataServiceFromDataset wraps an already-loaded dataset. Used by
// tests and the forecast CLI.
func NewMarketDataServiceFromDataset(ds *forecast.Dataset) *MarketDataService {
	return &MarketDataService{dataset: ds}
}

// Available reports whether the dataset loaded successfully.
func (s *MarketDataService) Available() bool {
	return s.dataset != nil
}

// PriceHistory returns the date-ascending price series for one entity as
// parallel date and price slices.
func (s *MarketDataService) PriceHistory(entity string) (*models.PriceHistory, error) {
	if s.dataset == nil {
		return nil, ErrDataUnavailable
	}
	obs := s.dataset.Observations(entity)
	if len(obs) == 0 {
		return nil, ErrEntityNotFound
	}

	history := &models.PriceHistory{
		Dates:  make([]string, len(obs)),
		Prices: make([]float64, len(obs)),
	}
	for i, o := range obs {
		history.Dates[i] = o.Date.Format("2006-01-02")
		history.Prices[i] = o.Value
	}
	return history, nil
}

// Entities lists the entity names present in the dataset, sorted.
func (s *MarketDataService) Entities() ([]string, error) {
	if s.dataset == nil {
		return nil, ErrDataUnavailable
	}
	names := s.dataset.Entities()
	sort.Strings(names)
	return names, nil
}
