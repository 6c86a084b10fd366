package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestArtifact(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestForecastStoreGet(t *testing.T) {
	dir := t.TempDir()
	writeTestArtifact(t, dir, "nifty_auto.csv", "ds,yhat\n2024-01-01,100.5\n2024-01-02,101.25\n")

	store, err := NewFileForecastStore(dir)
	if err != nil {
		t.Fatalf("NewFileForecastStore: %v", err)
	}

	points, err := store.Get("NIFTY Auto")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Yhat != 100.5 || points[1].Yhat != 101.25 {
		t.Errorf("unexpected values: %v", points)
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].Date.Before(points[i].Date) {
			t.Errorf("points not ascending at %d", i)
		}
	}
}

func TestForecastStoreNameNormalization(t *testing.T) {
	dir := t.TempDir()
	writeTestArtifact(t, dir, "nifty_auto.csv", "ds,yhat\n2024-01-01,100\n")

	store, _ := NewFileForecastStore(dir)

	for _, name := range []string{"nifty auto", "NIFTY AUTO", "Nifty  Auto", "nifty_auto"} {
		if _, err := store.Get(name); err != nil {
			t.Errorf("Get(%q) failed: %v", name, err)
		}
	}
}

func TestForecastStoreNotFound(t *testing.T) {
	store, _ := NewFileForecastStore(t.TempDir())
	if _, err := store.Get("nifty metal"); !errors.Is(err, ErrForecastNotFound) {
		t.Errorf("expected ErrForecastNotFound, got %v", err)
	}
}

func TestForecastStoreMalformedArtifact(t *testing.T) {
	dir := t.TempDir()
	writeTestArtifact(t, dir, "bad_header.csv", "wrong,columns\n1,2\n")
	writeTestArtifact(t, dir, "bad_date.csv", "ds,yhat\nnot-a-date,1\n")

	store, _ := NewFileForecastStore(dir)

	if _, err := store.Get("bad header"); err == nil || errors.Is(err, ErrForecastNotFound) {
		t.Errorf("expected parse error, got %v", err)
	}
	if _, err := store.Get("bad date"); err == nil || errors.Is(err, ErrForecastNotFound) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestForecastStorePicksUpRegeneratedArtifact(t *testing.T) {
	dir := t.TempDir()
	path := writeTestArtifact(t, dir, "nifty_it.csv", "ds,yhat\n2024-01-01,1\n")

	store, _ := NewFileForecastStore(dir)
	points, err := store.Get("nifty it")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}

	// Rewrite the artifact with a newer modtime, as a generator rerun would.
	writeTestArtifact(t, dir, "nifty_it.csv", "ds,yhat\n2024-01-01,1\n2024-01-02,2\n")
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	points, err = store.Get("nifty it")
	if err != nil {
		t.Fatalf("Get after rewrite failed: %v", err)
	}
	if len(points) != 2 {
		t.Errorf("cache should be invalidated by modtime, got %d points", len(points))
	}
}

func TestForecastStoreAvailable(t *testing.T) {
	dir := t.TempDir()
	writeTestArtifact(t, dir, "nifty_bank.csv", "ds,yhat\n")
	writeTestArtifact(t, dir, "nifty_auto.csv", "ds,yhat\n")
	writeTestArtifact(t, dir, "notes.txt", "not an artifact")

	store, _ := NewFileForecastStore(dir)
	slugs, err := store.Available()
	if err != nil {
		t.Fatalf("Available failed: %v", err)
	}
	if len(slugs) != 2 || slugs[0] != "nifty_auto" || slugs[1] != "nifty_bank" {
		t.Errorf("unexpected slugs: %v", slugs)
	}
}
