package forecast

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/marketpulse/trade-coin/backend/internal/models"
)

// Known header spellings for the three required columns. The historical dumps
// came in two flavors: the NSE index dump (index_name/index_date/
// closing_index_value) and an older per-company dump (company_id/date/price).
var (
	entityColumns = []string{"index_name", "company_id", "entity_id"}
	dateColumns   = []string{"index_date", "date"}
	valueColumns  = []string{"closing_index_value", "price", "value"}
)

// Date layouts accepted for observation rows. Rows that match none of these
// are dropped.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"01-02-2006",
	"2006/01/02",
	"02/01/2006",
	"2006-01-02 15:04:05",
}

// Dataset holds the historical observations grouped by entity slug. Built
// once at load time and read-only afterwards.
type Dataset struct {
	// byEntity maps Slug(name) -> observations sorted by date ascending.
	byEntity map[string][]models.Observation
	// names maps Slug(name) -> the name as it appeared in the file.
	names map[string]string

	rowsRead    int
	rowsDropped int
}

// LoadDataset reads and validates the flat CSV dataset. It fails if the file
// cannot be opened or if any required column is missing; individual rows with
// unparseable dates or values are dropped and counted.
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ReadDataset(f)
}

// ReadDataset parses a dataset from a reader. Exposed separately so tests can
// feed in-memory CSV.
func ReadDataset(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	entityIdx := findColumn(header, entityColumns)
	dateIdx := findColumn(header, dateColumns)
	valueIdx := findColumn(header, valueColumns)
	if entityIdx < 0 || dateIdx < 0 || valueIdx < 0 {
		return nil, fmt.Errorf("dataset missing required columns (need entity/date/value, got %v)", header)
	}

	ds := &Dataset{
		byEntity: make(map[string][]models.Observation),
		names:    make(map[string]string),
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Ragged row. Drop it and keep going.
			ds.rowsDropped++
			continue
		}

		ds.rowsRead++
		name := strings.TrimSpace(record[entityIdx])
		if name == "" {
			ds.rowsDropped++
			continue
		}
		// Record the entity even if this row turns out invalid, so an entity
		// whose every row is dropped is reported as skipped rather than
		// silently absent.
		slug := Slug(name)
		ds.names[slug] = name

		date, ok := parseDate(record[dateIdx])
		if !ok {
			ds.rowsDropped++
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(record[valueIdx]), ",", ""), 64)
		if err != nil {
			ds.rowsDropped++
			continue
		}

		ds.byEntity[slug] = append(ds.byEntity[slug], models.Observation{
			Entity: name,
			Date:   date,
			Value:  value,
		})
	}

	for slug, obs := range ds.byEntity {
		ds.byEntity[slug] = normalizeSeries(obs)
	}

	if ds.rowsDropped > 0 {
		log.Printf("Dataset: dropped %d of %d rows (unparseable date/value)", ds.rowsDropped, ds.rowsRead)
	}
	return ds, nil
}

// Entities returns the original entity names present in the dataset, sorted.
func (d *Dataset) Entities() []string {
	names := make([]string, 0, len(d.names))
	for _, name := range d.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Observations returns the sorted series for an entity name, or nil if the
// dataset has no rows for it.
func (d *Dataset) Observations(name string) []models.Observation {
	return d.byEntity[Slug(name)]
}

// RowsDropped reports how many rows were discarded during load.
func (d *Dataset) RowsDropped() int {
	return d.rowsDropped
}

func findColumn(header []string, candidates []string) int {
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))
		for _, want := range candidates {
			if col == want {
				return i
			}
		}
	}
	return -1
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeSeries sorts by date ascending and collapses duplicate dates,
// keeping the last occurrence (matching the dump's append-only updates).
func normalizeSeries(obs []models.Observation) []models.Observation {
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Date.Before(obs[j].Date)
	})
	out := obs[:0]
	for _, o := range obs {
		if n := len(out); n > 0 && out[n-1].Date.Equal(o.Date) {
			out[n-1] = o
			continue
		}
		out = append(out, o)
	}
	return out
}
