package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/marketpulse/trade-coin/backend/internal/api"
	"github.com/marketpulse/trade-coin/backend/internal/auth"
	"github.com/marketpulse/trade-coin/backend/internal/database"
	"github.com/marketpulse/trade-coin/backend/internal/services"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./users.db"
	}

	// Initialize database
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Historical dataset. A missing file is logged and the history endpoint
	// reports unavailable; the rest of the API keeps working.
	dataFile := os.Getenv("DATA_FILE")
	if dataFile == "" {
		dataFile = "./dump.csv"
	}
	marketData := services.NewMarketDataService(dataFile)

	// Forecast artifacts written by cmd/forecast
	forecastDir := os.Getenv("FORECAST_DIR")
	if forecastDir == "" {
		forecastDir = "./forecast_output"
	}
	forecastStore, err := services.NewFileForecastStore(forecastDir)
	if err != nil {
		log.Fatalf("Failed to initialize forecast store: %v", err)
	}

	// Session tokens
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Println("Warning: JWT_SECRET not set, using an insecure development secret")
		jwtSecret = "dev-secret"
	}
	tokens := auth.NewJWTManager(jwtSecret, auth.DefaultTokenTTL)

	accounts := services.NewAccountService(database.GetDB(), auth.BcryptHasher{})

	// Setup router
	router := api.SetupRouter(marketData, forecastStore, accounts, tokens)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
