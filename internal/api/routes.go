package api

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marketpulse/trade-coin/backend/internal/api/handlers"
	"github.com/marketpulse/trade-coin/backend/internal/auth"
	"github.com/marketpulse/trade-coin/backend/internal/services"
)

func SetupRouter(marketData *services.MarketDataService, forecastStore *services.FileForecastStore, accounts *services.AccountService, tokens auth.TokenManager) *gin.Engine {
	router := gin.Default()

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false
	router.Use(cors.New(config))
	router.Use(requestMetrics())

	// Initialize handlers
	marketHandler := handlers.NewMarketHandler(marketData, forecastStore)
	accountHandler := handlers.NewAccountHandler(accounts, tokens)

	// Credential endpoints get a per-IP rate limit to slow brute forcing.
	credentialLimit := ipRateLimiter()

	// API routes
	api := router.Group("/api")
	{
		api.GET("/stock-data/:entity", marketHandler.GetStockData)
		api.GET("/forecast/:entity", marketHandler.GetForecast)
		api.GET("/indices", marketHandler.ListIndices)

		api.POST("/register", credentialLimit, accountHandler.Register)
		api.POST("/login", credentialLimit, accountHandler.Login)
		api.POST("/withdraw", accountHandler.Withdraw)
		api.POST("/update_prediction", accountHandler.UpdatePrediction)

		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
