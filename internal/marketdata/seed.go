package marketdata

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/phuslu/log"
	"gopkg.in/yaml.v3"
)

type PredictionRecord struct {
	LocationName           string   `yaml:"location_name" db:"location_name" validate:"required"`
	ForecastDate           string   `yaml:"forecast_date" db:"forecast_date" validate:"required"`
	PredictedRent          *float64 `yaml:"predicted_rent" db:"predicted_rent" validate:"omitempty,gt=0"`
	PredictedChangePercent *float64 `yaml:"predicted_change_percent" db:"predicted_change_percent"`
}

type FairMarketRentRecord struct {
	Area           string  `yaml:"area" db:"area" validate:"required"`
	State          string  `yaml:"state" db:"state"`
	FiscalYear     int     `yaml:"fiscal_year" db:"fiscal_year" validate:"gt=1900"`
	TwoBedBaseline float64 `yaml:"two_bed_baseline" db:"two_bed_baseline" validate:"gt=0"`
}

type RentIndexRecord struct {
	MetroArea        string  `yaml:"metro_area" db:"metro_area" validate:"required"`
	Period           string  `yaml:"period" db:"period" validate:"required"`
	MedianRent       float64 `yaml:"median_rent" db:"median_rent" validate:"gt=0"`
	YoYChangePercent float64 `yaml:"yoy_change_percent" db:"yoy_change_percent"`
}

// SeedData is the YAML layout accepted by `negotiator seed`.
type SeedData struct {
	Predictions     []PredictionRecord     `yaml:"predictions" validate:"dive"`
	FairMarketRents []FairMarketRentRecord `yaml:"fair_market_rents" validate:"dive"`
	RentIndex       []RentIndexRecord      `yaml:"rent_index" validate:"dive"`
}

func LoadSeedFile(path string) (SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedData{}, fmt.Errorf("read seed file: %w", err)
	}
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return SeedData{}, fmt.Errorf("parse seed file: %w", err)
	}
	if err := validator.New().Struct(data); err != nil {
		return SeedData{}, fmt.Errorf("invalid seed file: %w", err)
	}
	return data, nil
}

// Seed inserts all records in one transaction. With reset, existing rows are removed
// first.
func (s *Store) Seed(ctx context.Context, data SeedData, reset bool) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	if reset {
		for _, table := range []string{"rent_predictions", "fair_market_rents", "rent_index"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("reset %s: %w", table, err)
			}
		}
	}
	for _, p := range data.Predictions {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO rent_predictions (location_name, forecast_date, predicted_rent, predicted_change_percent)
VALUES (:location_name, :forecast_date, :predicted_rent, :predicted_change_percent)`, p); err != nil {
			return fmt.Errorf("insert prediction %s: %w", p.LocationName, err)
		}
	}
	for _, f := range data.FairMarketRents {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO fair_market_rents (area, state, fiscal_year, two_bed_baseline)
VALUES (:area, :state, :fiscal_year, :two_bed_baseline)`, f); err != nil {
			return fmt.Errorf("insert fair market rent %s: %w", f.Area, err)
		}
	}
	for _, r := range data.RentIndex {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO rent_index (metro_area, period, median_rent, yoy_change_percent)
VALUES (:metro_area, :period, :median_rent, :yoy_change_percent)`, r); err != nil {
			return fmt.Errorf("insert rent index %s: %w", r.MetroArea, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	log.Info().Int("predictions", len(data.Predictions)).Int("fair_market_rents", len(data.FairMarketRents)).Int("rent_index", len(data.RentIndex)).Msg("market data seeded")
	return nil
}
