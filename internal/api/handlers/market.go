package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketpulse/trade-coin/backend/internal/models"
	"github.com/marketpulse/trade-coin/backend/internal/services"
)

type MarketHandler struct {
	marketData    *services.MarketDataService
	forecastStore *services.FileForecastStore
}

func NewMarketHandler(marketData *services.MarketDataService, forecastStore *services.FileForecastStore) *MarketHandler {
	return &MarketHandler{
		marketData:    marketData,
		forecastStore: forecastStore,
	}
}

// GetStockData returns the raw price series for one index as parallel
// dates/prices arrays.
func (h *MarketHandler) GetStockData(c *gin.Context) {
	entity := c.Param("entity")

	history, err := h.marketData.PriceHistory(entity)
	if err != nil {
		if errors.Is(err, services.ErrEntityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no data for " + entity})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, history)
}

// GetForecast returns the pre-computed forecast rows for one index.
func (h *MarketHandler) GetForecast(c *gin.Context) {
	entity := c.Param("entity")

	points, err := h.forecastStore.Get(entity)
	if err != nil {
		if errors.Is(err, services.ErrForecastNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Forecast not found for " + entity})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows := make([]models.ForecastPointJSON, len(points))
	for i, p := range points {
		rows[i] = p.Wire()
	}
	c.JSON(http.StatusOK, rows)
}

// ListIndices returns the index names available in the dataset.
func (h *MarketHandler) ListIndices(c *gin.Context) {
	indices, err := h.marketData.Entities()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"indices": indices})
}
