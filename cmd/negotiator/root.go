// negotiator builds tenant rent-negotiation roadmaps.
//
// Usage:
//
//	negotiator serve [--config negotiator.yaml]
//	negotiator roadmap --input request.json [--format json|markdown|html]
//	negotiator seed --file datasets.yaml [--reset]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "negotiator",
	Short:         "Rent negotiation roadmaps for tenants",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (optional)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
