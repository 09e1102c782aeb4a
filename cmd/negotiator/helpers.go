package main

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/joelkehle/lease-negotiator/internal/analyst"
	"github.com/joelkehle/lease-negotiator/internal/config"
	"github.com/joelkehle/lease-negotiator/internal/marketdata"
	"github.com/joelkehle/lease-negotiator/internal/negotiation"
)

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	config.ConfigureLogging(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config) (*marketdata.Store, error) {
	store, err := marketdata.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open market data (%s): %w", cfg.Database.Driver, err)
	}
	return store, nil
}

// buildEngine wires the dataset store and the configured analyst into a fusion engine.
func buildEngine(ctx context.Context, cfg config.Config, store *marketdata.Store) (*negotiation.Engine, error) {
	src := negotiation.Sources{Predictions: store, Baselines: store, Index: store}
	a, err := analyst.FromOptions(ctx, analyst.Options{
		Provider:        cfg.Analyst.Provider,
		Model:           cfg.Analyst.Model,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		Timeout:         cfg.Analyst.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("analyst: %w", err)
	}
	if a != nil {
		src.Analyst = a
		log.Info().Str("provider", a.Name()).Msg("semantic market analyst enabled")
	}
	return negotiation.NewEngine(negotiation.NewFusion(src)), nil
}
