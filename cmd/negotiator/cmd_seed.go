package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joelkehle/lease-negotiator/internal/marketdata"
)

var seedFlags struct {
	file  string
	reset bool
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load market datasets from a YAML file",
	RunE:  runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedFlags.file, "file", "", "YAML dataset file (required)")
	f.BoolVar(&seedFlags.reset, "reset", false, "Delete existing rows first")
	_ = seedCmd.MarkFlagRequired("file")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := marketdata.LoadSeedFile(seedFlags.file)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Seed(ctx, data, seedFlags.reset); err != nil {
		return err
	}
	counts, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "predictions: %s\nfair market rents: %s\nrent index: %s\n",
		humanize.Comma(counts.Predictions), humanize.Comma(counts.FairMarketRents), humanize.Comma(counts.RentIndex))
	return nil
}
