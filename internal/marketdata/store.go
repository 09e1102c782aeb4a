package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/phuslu/log"
	_ "modernc.org/sqlite"

	"github.com/joelkehle/lease-negotiator/internal/negotiation"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Store serves the three market datasets from SQLite or Postgres. It implements the
// prediction, baseline and index lookups the fusion engine consumes.
type Store struct {
	db *sqlx.DB
}

var (
	_ negotiation.PredictionLookup = (*Store)(nil)
	_ negotiation.BaselineLookup   = (*Store)(nil)
	_ negotiation.IndexLookup      = (*Store)(nil)
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS rent_predictions (
	location_name            TEXT NOT NULL,
	forecast_date            TEXT NOT NULL,
	predicted_rent           DOUBLE PRECISION,
	predicted_change_percent DOUBLE PRECISION
)`,
	`CREATE INDEX IF NOT EXISTS rent_predictions_location ON rent_predictions (location_name)`,
	`CREATE TABLE IF NOT EXISTS fair_market_rents (
	area             TEXT NOT NULL,
	state            TEXT NOT NULL DEFAULT '',
	fiscal_year      INTEGER NOT NULL,
	two_bed_baseline DOUBLE PRECISION NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS fair_market_rents_area ON fair_market_rents (area)`,
	`CREATE TABLE IF NOT EXISTS rent_index (
	metro_area         TEXT NOT NULL,
	period             TEXT NOT NULL,
	median_rent        DOUBLE PRECISION NOT NULL,
	yoy_change_percent DOUBLE PRECISION NOT NULL DEFAULT 0
)`,
	`CREATE INDEX IF NOT EXISTS rent_index_metro ON rent_index (metro_area)`,
}

// Open connects to driver ("sqlite" or "pgx") and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres, "postgres":
		driver = DriverPostgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	log.Debug().Str("driver", driver).Msg("market data store ready")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type predictionRow struct {
	LocationName           string          `db:"location_name"`
	ForecastDate           string          `db:"forecast_date"`
	PredictedRent          sql.NullFloat64 `db:"predicted_rent"`
	PredictedChangePercent sql.NullFloat64 `db:"predicted_change_percent"`
}

// LookupPrediction returns forecasts for locationName, newest first.
func (s *Store) LookupPrediction(ctx context.Context, locationName string) ([]negotiation.Prediction, error) {
	var rows []predictionRow
	q := s.db.Rebind(`SELECT location_name, forecast_date, predicted_rent, predicted_change_percent
FROM rent_predictions WHERE lower(location_name) = lower(?) ORDER BY forecast_date DESC LIMIT 5`)
	if err := s.db.SelectContext(ctx, &rows, q, locationName); err != nil {
		return nil, fmt.Errorf("lookup prediction: %w", err)
	}
	out := make([]negotiation.Prediction, 0, len(rows))
	for _, r := range rows {
		out = append(out, negotiation.Prediction{
			LocationName:           r.LocationName,
			ForecastDate:           r.ForecastDate,
			PredictedRent:          nullable(r.PredictedRent),
			PredictedChangePercent: nullable(r.PredictedChangePercent),
		})
	}
	return out, nil
}

type baselineRow struct {
	Area           string  `db:"area"`
	TwoBedBaseline float64 `db:"two_bed_baseline"`
}

// LookupBaseline matches a county name or a state code against the latest fiscal year
// on file for it.
func (s *Store) LookupBaseline(ctx context.Context, countyOrState string) ([]negotiation.Baseline, error) {
	var rows []baselineRow
	q := s.db.Rebind(`SELECT area, two_bed_baseline FROM fair_market_rents
WHERE (lower(area) = lower(?) OR lower(state) = lower(?))
  AND fiscal_year = (SELECT MAX(fiscal_year) FROM fair_market_rents WHERE lower(area) = lower(?) OR lower(state) = lower(?))
ORDER BY area LIMIT 100`)
	if err := s.db.SelectContext(ctx, &rows, q, countyOrState, countyOrState, countyOrState, countyOrState); err != nil {
		return nil, fmt.Errorf("lookup baseline: %w", err)
	}
	out := make([]negotiation.Baseline, 0, len(rows))
	for _, r := range rows {
		out = append(out, negotiation.Baseline{Area: r.Area, TwoBedBaseline: r.TwoBedBaseline})
	}
	return out, nil
}

type indexRow struct {
	MetroArea  string  `db:"metro_area"`
	Period     string  `db:"period"`
	MedianRent float64 `db:"median_rent"`
	YoY        float64 `db:"yoy_change_percent"`
}

// LookupIndex returns index points for metroArea, newest first.
func (s *Store) LookupIndex(ctx context.Context, metroArea string) ([]negotiation.IndexPoint, error) {
	var rows []indexRow
	q := s.db.Rebind(`SELECT metro_area, period, median_rent, yoy_change_percent
FROM rent_index WHERE lower(metro_area) = lower(?) ORDER BY period DESC LIMIT 12`)
	if err := s.db.SelectContext(ctx, &rows, q, metroArea); err != nil {
		return nil, fmt.Errorf("lookup index: %w", err)
	}
	out := make([]negotiation.IndexPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, negotiation.IndexPoint{
			MetroArea:                 r.MetroArea,
			Period:                    r.Period,
			MedianRent:                r.MedianRent,
			YearOverYearChangePercent: r.YoY,
		})
	}
	return out, nil
}

// Counts reports the number of rows per dataset table.
type Counts struct {
	Predictions     int64 `json:"predictions"`
	FairMarketRents int64 `json:"fair_market_rents"`
	RentIndex       int64 `json:"rent_index"`
}

func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	for table, dst := range map[string]*int64{
		"rent_predictions":  &c.Predictions,
		"fair_market_rents": &c.FairMarketRents,
		"rent_index":        &c.RentIndex,
	} {
		if err := s.db.GetContext(ctx, dst, "SELECT COUNT(*) FROM "+table); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", table, err)
		}
	}
	return c, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
