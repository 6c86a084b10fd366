package forecast

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/marketpulse/trade-coin/backend/internal/metrics"
	"github.com/marketpulse/trade-coin/backend/internal/models"
)

const (
	// DefaultHorizon is how many daily steps past the last observation each
	// forecast extends.
	DefaultHorizon = 30
)

// EntityResult records the outcome of forecasting a single index. Exactly one
// of Rows > 0, Skipped, or Err is meaningful.
type EntityResult struct {
	Entity  string `json:"entity"`
	Rows    int    `json:"rows"`
	Skipped bool   `json:"skipped,omitempty"`
	Err     error  `json:"-"`
}

// BatchResult aggregates a full generator run. One entity's failure never
// aborts the batch; it is recorded here instead.
type BatchResult struct {
	Results  []EntityResult
	Written  int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// Generator runs the trend model over every index in a dataset and persists
// one forecast artifact per index. Re-running overwrites prior artifacts.
type Generator struct {
	Model     TrendModel
	OutputDir string
	Horizon   int
}

func NewGenerator(model TrendModel, outputDir string) *Generator {
	return &Generator{
		Model:     model,
		OutputDir: outputDir,
		Horizon:   DefaultHorizon,
	}
}

// Run forecasts every entity in the dataset. Entities are processed in sorted
// order so reruns are deterministic. The context is checked between entities;
// cancellation stops the batch and returns what was done so far.
func (g *Generator) Run(ctx context.Context, ds *Dataset) (*BatchResult, error) {
	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	start := time.Now()
	result := &BatchResult{}

	entities := ds.Entities()
	sort.Strings(entities)

	for _, entity := range entities {
		select {
		case <-ctx.Done():
			result.Duration = time.Since(start)
			return result, ctx.Err()
		default:
		}

		res := g.runOne(entity, ds.Observations(entity))
		result.Results = append(result.Results, res)
		switch {
		case res.Err != nil:
			result.Failed++
			metrics.ForecastEntitiesFailed.Inc()
			log.Printf("Forecast generator: %s failed: %v", entity, res.Err)
		case res.Skipped:
			result.Skipped++
			metrics.ForecastEntitiesSkipped.Inc()
			log.Printf("Forecast generator: %s skipped (no valid observations)", entity)
		default:
			result.Written++
			metrics.ForecastEntitiesWritten.Inc()
		}
	}

	result.Duration = time.Since(start)
	metrics.ForecastBatchDuration.Observe(result.Duration.Seconds())
	log.Printf("Forecast generator: %d written, %d skipped, %d failed in %s",
		result.Written, result.Skipped, result.Failed, result.Duration.Round(time.Millisecond))
	return result, nil
}

func (g *Generator) runOne(entity string, obs []models.Observation) EntityResult {
	if len(obs) == 0 {
		return EntityResult{Entity: entity, Skipped: true}
	}

	horizon := g.Horizon
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	points, err := g.Model.Forecast(obs, horizon)
	if err != nil {
		return EntityResult{Entity: entity, Err: err}
	}

	if err := writeArtifact(filepath.Join(g.OutputDir, ArtifactFilename(entity)), points); err != nil {
		return EntityResult{Entity: entity, Err: err}
	}
	return EntityResult{Entity: entity, Rows: len(points)}
}

// writeArtifact persists a forecast as a ds,yhat CSV. The write goes through
// a temp file and rename so API readers never see a half-written artifact.
func writeArtifact(path string, points []models.ForecastPoint) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".forecast-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{"ds", "yhat"}); err != nil {
		tmp.Close()
		return err
	}
	for _, p := range points {
		record := []string{
			p.Date.Format("2006-01-02"),
			strconv.FormatFloat(p.Yhat, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
