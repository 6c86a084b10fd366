package forecast

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marketpulse/trade-coin/backend/internal/models"
)

// scriptedModel returns canned results per entity so generator behavior can
// be tested without a real fit.
type scriptedModel struct {
	failFor map[string]error
}

func (m *scriptedModel) Forecast(obs []models.Observation, horizon int) ([]models.ForecastPoint, error) {
	if m.failFor != nil {
		if err, ok := m.failFor[obs[0].Entity]; ok {
			return nil, err
		}
	}
	points := make([]models.ForecastPoint, 0, len(obs)+horizon)
	for _, o := range obs {
		points = append(points, models.ForecastPoint{Date: o.Date, Yhat: o.Value})
	}
	last := obs[len(obs)-1].Date
	for i := 1; i <= horizon; i++ {
		points = append(points, models.ForecastPoint{Date: last.AddDate(0, 0, i), Yhat: 0})
	}
	return points, nil
}

func testDataset(t *testing.T, csv string) *Dataset {
	t.Helper()
	ds, err := ReadDataset(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadDataset failed: %v", err)
	}
	return ds
}

func TestGeneratorWritesOneArtifactPerEntity(t *testing.T) {
	ds := testDataset(t, `index_name,index_date,closing_index_value
Nifty Auto,2024-01-01,100
Nifty Auto,2024-01-02,101
Nifty Bank,2024-01-01,200
`)
	dir := t.TempDir()

	gen := NewGenerator(&scriptedModel{}, dir)
	gen.Horizon = 3
	result, err := gen.Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Written != 2 || result.Failed != 0 || result.Skipped != 0 {
		t.Errorf("unexpected result: %+v", result)
	}

	for _, name := range []string{"nifty_auto.csv", "nifty_bank.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected artifact %s: %v", name, err)
		}
	}
}

func TestGeneratorSkipsEntitiesWithNoValidRows(t *testing.T) {
	// Nifty Metal's only row has an unparseable date, so it is skipped; the
	// two valid entities still produce artifacts. N=3 entities, M=1 empty ->
	// exactly N-M artifacts.
	ds := testDataset(t, `index_name,index_date,closing_index_value
Nifty Auto,2024-01-01,100
Nifty Metal,garbage,50
Nifty Bank,2024-01-01,200
`)
	dir := t.TempDir()

	gen := NewGenerator(&scriptedModel{}, dir)
	result, err := gen.Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Written != 2 || result.Skipped != 1 || result.Failed != 0 {
		t.Fatalf("expected 2 written / 1 skipped, got %+v", result)
	}
	if _, err := os.Stat(filepath.Join(dir, "nifty_metal.csv")); !os.IsNotExist(err) {
		t.Error("skipped entity should not produce an artifact")
	}
}

func TestGeneratorOneFailureDoesNotAbortBatch(t *testing.T) {
	ds := testDataset(t, `index_name,index_date,closing_index_value
Nifty Auto,2024-01-01,100
Nifty Bank,2024-01-01,200
Nifty IT,2024-01-01,300
`)
	dir := t.TempDir()

	boom := errors.New("model blew up")
	gen := NewGenerator(&scriptedModel{failFor: map[string]error{"Nifty Bank": boom}}, dir)
	result, err := gen.Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Written != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 written / 1 failed, got %+v", result)
	}

	var failed *EntityResult
	for i := range result.Results {
		if result.Results[i].Err != nil {
			failed = &result.Results[i]
		}
	}
	if failed == nil || failed.Entity != "Nifty Bank" || !errors.Is(failed.Err, boom) {
		t.Errorf("failure not recorded correctly: %+v", failed)
	}

	if _, err := os.Stat(filepath.Join(dir, "nifty_bank.csv")); !os.IsNotExist(err) {
		t.Error("failed entity should not leave an artifact")
	}
	if _, err := os.Stat(filepath.Join(dir, "nifty_it.csv")); err != nil {
		t.Error("entities after the failure should still be written")
	}
}

func TestGeneratorArtifactContents(t *testing.T) {
	ds := testDataset(t, `index_name,index_date,closing_index_value
Nifty Auto,2024-01-01,100.5
Nifty Auto,2024-01-02,101
`)
	dir := t.TempDir()

	gen := NewGenerator(&scriptedModel{}, dir)
	gen.Horizon = 2
	if _, err := gen.Run(context.Background(), ds); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "nifty_auto.csv"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "ds,yhat" {
		t.Errorf("bad header: %q", lines[0])
	}
	// 2 observed + 2 horizon rows
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %v", len(lines), lines)
	}
	if lines[1] != "2024-01-01,100.5" {
		t.Errorf("bad first row: %q", lines[1])
	}
	if !strings.HasPrefix(lines[4], "2024-01-04,") {
		t.Errorf("last row should be two days past the last observation: %q", lines[4])
	}
}

func TestGeneratorRerunOverwrites(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(&scriptedModel{}, dir)
	gen.Horizon = 1

	first := testDataset(t, `index_name,index_date,closing_index_value
Nifty Auto,2024-01-01,100
`)
	if _, err := gen.Run(context.Background(), first); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	second := testDataset(t, `index_name,index_date,closing_index_value
Nifty Auto,2024-01-01,100
Nifty Auto,2024-01-02,101
`)
	if _, err := gen.Run(context.Background(), second); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "nifty_auto.csv"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// header + 2 observed + 1 horizon; no merge with the first run
	if len(lines) != 4 {
		t.Errorf("rerun should overwrite, expected 4 lines got %d", len(lines))
	}
}

func TestGeneratorCancellation(t *testing.T) {
	ds := testDataset(t, `index_name,index_date,closing_index_value
Nifty Auto,2024-01-01,100
Nifty Bank,2024-01-01,200
`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := NewGenerator(&scriptedModel{}, t.TempDir())
	result, err := gen.Run(ctx, ds)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil {
		t.Fatal("cancelled run should still return the partial result")
	}
	if result.Written != 0 {
		t.Errorf("pre-cancelled context should write nothing, wrote %d", result.Written)
	}
}

func TestGeneratorWithLinearModelEndToEnd(t *testing.T) {
	// 100 daily observations -> artifact of 130 rows, last 30 strictly after
	// the last observed date.
	var b strings.Builder
	b.WriteString("index_name,index_date,closing_index_value\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		b.WriteString("NIFTY Auto," + start.AddDate(0, 0, i).Format("2006-01-02") + ",1000\n")
	}
	ds := testDataset(t, b.String())
	dir := t.TempDir()

	gen := NewGenerator(NewLinearTrendModel(), dir)
	result, err := gen.Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Written != 1 {
		t.Fatalf("expected 1 artifact, got %+v", result)
	}
	if result.Results[0].Rows != 130 {
		t.Errorf("expected 130 rows, got %d", result.Results[0].Rows)
	}
}
