package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joelkehle/lease-negotiator/internal/negotiation"
	"github.com/joelkehle/lease-negotiator/internal/render"
)

var roadmapFlags struct {
	input  string
	format string
}

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Generate a roadmap from a JSON request file",
	RunE:  runRoadmap,
}

func init() {
	f := roadmapCmd.Flags()
	f.StringVarP(&roadmapFlags.input, "input", "i", "", "Request JSON file, - for stdin (required)")
	f.StringVarP(&roadmapFlags.format, "format", "f", "json", "Output format: json, markdown or html")
	_ = roadmapCmd.MarkFlagRequired("input")
}

func runRoadmap(cmd *cobra.Command, _ []string) error {
	switch roadmapFlags.format {
	case "json", "markdown", "html":
	default:
		return fmt.Errorf("unsupported format %q", roadmapFlags.format)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	req, err := readRequest(cmd.InOrStdin(), roadmapFlags.input)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	engine, err := buildEngine(ctx, cfg, store)
	if err != nil {
		return err
	}
	roadmap, err := engine.GenerateRoadmap(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch roadmapFlags.format {
	case "markdown":
		_, err = io.WriteString(out, negotiation.BuildMarkdown(roadmap))
	case "html":
		var doc string
		doc, err = render.HTML("Rent Negotiation Roadmap", negotiation.BuildMarkdown(roadmap))
		if err == nil {
			_, err = io.WriteString(out, doc)
		}
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(roadmap)
	}
	return err
}

func readRequest(stdin io.Reader, path string) (negotiation.RoadmapRequest, error) {
	var req negotiation.RoadmapRequest
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return req, fmt.Errorf("read request: %w", err)
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("parse request: %w", err)
	}
	return req, nil
}
