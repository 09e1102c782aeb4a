package marketdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joelkehle/lease-negotiator/internal/negotiation"
)

const testSeed = `
predictions:
  - location_name: Austin, TX
    forecast_date: "2026-07-01"
    predicted_rent: 1800
    predicted_change_percent: -0.8
  - location_name: Austin, TX
    forecast_date: "2026-10-01"
    predicted_rent: 1850
  - location_name: Denver, CO
    forecast_date: "2026-10-01"
    predicted_rent: 2100
fair_market_rents:
  - area: Travis County
    state: TX
    fiscal_year: 2025
    two_bed_baseline: 1650
  - area: Travis County
    state: TX
    fiscal_year: 2026
    two_bed_baseline: 1712
  - area: Harris County
    state: TX
    fiscal_year: 2026
    two_bed_baseline: 1390
rent_index:
  - metro_area: Austin
    period: "2026-08"
    median_rent: 1705
    yoy_change_percent: -2.1
  - metro_area: Austin
    period: "2026-09"
    median_rent: 1690
    yoy_change_percent: -2.4
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "seed.yaml")
	if err := os.WriteFile(seedPath, []byte(testSeed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err := Open(context.Background(), DriverSQLite, filepath.Join(dir, "market.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	data, err := LoadSeedFile(seedPath)
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if err := s.Seed(context.Background(), data, false); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestLookupPredictionNewestFirst(t *testing.T) {
	s := newTestStore(t)
	got, err := s.LookupPrediction(context.Background(), "austin, tx")
	if err != nil {
		t.Fatalf("LookupPrediction: %v", err)
	}
	if len(got) != 2 || got[0].ForecastDate != "2026-10-01" {
		t.Fatalf("unexpected predictions: %+v", got)
	}
	if got[0].PredictedRent == nil || *got[0].PredictedRent != 1850 || got[0].PredictedChangePercent != nil {
		t.Fatalf("unexpected newest row: %+v", got[0])
	}
	if got[1].PredictedChangePercent == nil || *got[1].PredictedChangePercent != -0.8 {
		t.Fatalf("unexpected older row: %+v", got[1])
	}
}

func TestLookupBaselineLatestYear(t *testing.T) {
	s := newTestStore(t)
	got, err := s.LookupBaseline(context.Background(), "Travis County")
	if err != nil {
		t.Fatalf("LookupBaseline: %v", err)
	}
	if diff := cmp.Diff([]negotiation.Baseline{{Area: "Travis County", TwoBedBaseline: 1712}}, got); diff != "" {
		t.Fatalf("baseline (-want +got):\n%s", diff)
	}

	byState, err := s.LookupBaseline(context.Background(), "tx")
	if err != nil {
		t.Fatalf("LookupBaseline state: %v", err)
	}
	if len(byState) != 2 {
		t.Fatalf("expected both 2026 counties, got %+v", byState)
	}
}

func TestLookupIndexAndMissing(t *testing.T) {
	s := newTestStore(t)
	got, err := s.LookupIndex(context.Background(), "Austin")
	if err != nil {
		t.Fatalf("LookupIndex: %v", err)
	}
	if len(got) != 2 || got[0].MedianRent != 1690 || got[0].YearOverYearChangePercent != -2.4 {
		t.Fatalf("unexpected index: %+v", got)
	}
	none, err := s.LookupIndex(context.Background(), "Nowhere")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no rows, got %+v (%v)", none, err)
	}
}

func TestStoreFeedsFusion(t *testing.T) {
	s := newTestStore(t)
	f := negotiation.NewFusion(negotiation.Sources{Predictions: s, Baselines: s, Index: s})
	got := f.Fuse(context.Background(), "Austin, Travis County, TX", 2000)
	if got.Source != negotiation.SourceDatasets {
		t.Fatalf("expected dataset intelligence, got %q", got.Source)
	}
	if got.MarketTrends.AvgRent == nil || *got.MarketTrends.AvgRent != 1690 {
		t.Fatalf("expected index median, got %+v", got.MarketTrends)
	}
}

func TestSeedResetAndCounts(t *testing.T) {
	s := newTestStore(t)
	c, err := s.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if c != (Counts{Predictions: 3, FairMarketRents: 3, RentIndex: 2}) {
		t.Fatalf("unexpected counts %+v", c)
	}
	if err := s.Seed(context.Background(), SeedData{RentIndex: []RentIndexRecord{{MetroArea: "Boise", Period: "2026-09", MedianRent: 1400}}}, true); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	c, _ = s.Counts(context.Background())
	if c != (Counts{RentIndex: 1}) {
		t.Fatalf("unexpected counts after reset %+v", c)
	}
}

func TestLoadSeedFileRejectsInvalidRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("rent_index:\n  - metro_area: Austin\n    period: \"2026-09\"\n    median_rent: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSeedFile(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "x"); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}
