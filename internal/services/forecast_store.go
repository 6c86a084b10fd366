package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/marketpulse/trade-coin/backend/internal/forecast"
	"github.com/marketpulse/trade-coin/backend/internal/metrics"
	"github.com/marketpulse/trade-coin/backend/internal/models"
)

var ErrForecastNotFound = errors.New("forecast not found")

const forecastCacheSize = 128

type cachedForecast struct {
	points  []models.ForecastPoint
	modTime time.Time
}

// FileForecastStore reads per-entity forecast artifacts from a directory of
// ds,yhat CSV files written by the batch generator. Parsed artifacts are held
// in an LRU cache keyed by entity slug; entries are invalidated by file
// modtime so a regenerated artifact is picked up on the next read.
type FileForecastStore struct {
	dir   string
	cache *lru.Cache[string, cachedForecast]
}

func NewFileForecastStore(dir string) (*FileForecastStore, error) {
	cache, err := lru.New[string, cachedForecast](forecastCacheSize)
	if err != nil {
		return nil, err
	}
	return &FileForecastStore{dir: dir, cache: cache}, nil
}

// Get returns the ordered forecast for an entity name. The name is normalized
// to the artifact naming convention, so lookups are case- and
// spacing-insensitive.
func (s *FileForecastStore) Get(name string) ([]models.ForecastPoint, error) {
	slug := forecast.Slug(name)
	path := filepath.Join(s.dir, slug+".csv")

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrForecastNotFound
		}
		return nil, err
	}

	if entry, ok := s.cache.Get(slug); ok && entry.modTime.Equal(info.ModTime()) {
		metrics.ForecastCacheHits.Inc()
		return entry.points, nil
	}
	metrics.ForecastCacheMisses.Inc()

	points, err := readArtifact(path)
	if err != nil {
		return nil, err
	}
	s.cache.Add(slug, cachedForecast{points: points, modTime: info.ModTime()})
	return points, nil
}

// Available lists the entity slugs that have an artifact on disk, sorted.
func (s *FileForecastStore) Available() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var slugs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(e.Name(), ".csv"))
	}
	sort.Strings(slugs)
	return slugs, nil
}

func readArtifact(path string) ([]models.ForecastPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read artifact header: %w", err)
	}
	if len(header) < 2 || strings.TrimSpace(header[0]) != "ds" || strings.TrimSpace(header[1]) != "yhat" {
		return nil, fmt.Errorf("artifact %s: unexpected header %v", filepath.Base(path), header)
	}

	var points []models.ForecastPoint
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read artifact %s: %w", filepath.Base(path), err)
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("artifact %s: bad date %q", filepath.Base(path), record[0])
		}
		yhat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("artifact %s: bad value %q", filepath.Base(path), record[1])
		}
		points = append(points, models.ForecastPoint{Date: date, Yhat: yhat})
	}
	return points, nil
}
