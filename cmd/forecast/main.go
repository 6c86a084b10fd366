// forecast regenerates the per-index forecast artifacts consumed by the API.
//
// Usage: go run ./cmd/forecast -data=dump.csv -out=forecast_output [-horizon=30]
//
// For every index in the dataset with at least one valid observation the tool
// fits the trend model and writes <slug>.csv (columns ds,yhat) covering the
// observed range plus the horizon. Existing artifacts are overwritten; one
// index failing never stops the rest. The exit code is nonzero only when the
// dataset itself cannot be loaded or no artifact could be written at all.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/marketpulse/trade-coin/backend/internal/forecast"
)

func main() {
	_ = godotenv.Load()

	dataFile := flag.String("data", envOr("DATA_FILE", "./dump.csv"), "historical dataset CSV")
	outDir := flag.String("out", envOr("FORECAST_DIR", "./forecast_output"), "artifact output directory")
	horizon := flag.Int("horizon", forecast.DefaultHorizon, "days to forecast past the last observation")
	flag.Parse()

	ds, err := forecast.LoadDataset(*dataFile)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	gen := forecast.NewGenerator(forecast.NewLinearTrendModel(), *outDir)
	gen.Horizon = *horizon

	// Ctrl-C stops between entities; artifacts already written stay valid.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := gen.Run(ctx, ds)
	if err != nil {
		log.Fatalf("Forecast run aborted: %v", err)
	}

	for _, r := range result.Results {
		switch {
		case r.Err != nil:
			fmt.Printf("FAIL  %-40s %v\n", r.Entity, r.Err)
		case r.Skipped:
			fmt.Printf("SKIP  %-40s no valid observations\n", r.Entity)
		default:
			fmt.Printf("OK    %-40s %d rows\n", r.Entity, r.Rows)
		}
	}
	fmt.Printf("\n%d written, %d skipped, %d failed (%s)\n",
		result.Written, result.Skipped, result.Failed, result.Duration.Round(time.Millisecond))

	if result.Written == 0 && result.Failed > 0 {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
