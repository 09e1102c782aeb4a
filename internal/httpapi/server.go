package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/phuslu/log"

	"github.com/joelkehle/lease-negotiator/internal/marketdata"
	"github.com/joelkehle/lease-negotiator/internal/negotiation"
	"github.com/joelkehle/lease-negotiator/internal/render"
)

const maxBodyBytes = 1 << 20

const reportTitle = "Rent Negotiation Roadmap"

// Planner is the subset of *negotiation.Engine the API serves.
type Planner interface {
	GenerateRoadmap(ctx context.Context, req negotiation.RoadmapRequest) (negotiation.Roadmap, error)
	MarketIntelligence(ctx context.Context, location string, currentRent float64) negotiation.MarketIntelligence
}

type PDFRenderer interface {
	Render(ctx context.Context, title, report string) ([]byte, error)
}

type Datasets interface {
	Ping(ctx context.Context) error
	Counts(ctx context.Context) (marketdata.Counts, error)
}

type Server struct {
	planner  Planner
	datasets Datasets
	pdf      PDFRenderer
	started  time.Time
}

// NewServer wires the API routes. datasets and pdf may be nil; health then omits dataset
// counts and PDF reports answer 501.
func NewServer(planner Planner, datasets Datasets, pdf PDFRenderer) http.Handler {
	s := &Server{
		planner:  planner,
		datasets: datasets,
		pdf:      pdf,
		started:  time.Now(),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/roadmap", s.handleRoadmap)
	mux.HandleFunc("/v1/roadmap/report", s.handleReport)
	mux.HandleFunc("/v1/market-intelligence", s.handleMarketIntelligence)
	mux.HandleFunc("/v1/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeFailure(w http.ResponseWriter, status int, code, field, message string) {
	body := map[string]any{"code": code, "message": message}
	if field != "" {
		body["field"] = field
	}
	writeJSON(w, status, map[string]any{"ok": false, "error": body})
}

func writeEngineError(w http.ResponseWriter, err error) {
	var ie *negotiation.InputError
	if errors.As(err, &ie) {
		code := "invalid_input"
		if errors.Is(ie, negotiation.ErrMissingInput) {
			code = "missing_input"
		}
		writeFailure(w, http.StatusBadRequest, code, ie.Field, ie.Error())
		return
	}
	log.Error().Err(err).Msg("roadmap request failed")
	writeFailure(w, http.StatusInternalServerError, "internal", "", err.Error())
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	blob, err := readBody(w, r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid_body", "", err.Error())
		return false
	}
	if err := json.Unmarshal(blob, dst); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid_json", "", err.Error())
		return false
	}
	return true
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req negotiation.RoadmapRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	roadmap, err := s.planner.GenerateRoadmap(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roadmap)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "markdown"
	}
	switch format {
	case "markdown", "html", "pdf":
	default:
		writeFailure(w, http.StatusBadRequest, "invalid_format", "format", fmt.Sprintf("unsupported format %q", format))
		return
	}
	if format == "pdf" && s.pdf == nil {
		writeFailure(w, http.StatusNotImplemented, "pdf_unavailable", "", "pdf rendering is not configured")
		return
	}

	var req negotiation.RoadmapRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	roadmap, err := s.planner.GenerateRoadmap(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	md := negotiation.BuildMarkdown(roadmap)

	switch format {
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, md)
	case "html":
		doc, err := render.HTML(reportTitle, md)
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "render_failed", "", err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, doc)
	case "pdf":
		pdf, err := s.pdf.Render(r.Context(), reportTitle, md)
		if err != nil {
			log.Error().Err(err).Msg("pdf render failed")
			writeFailure(w, http.StatusBadGateway, "render_failed", "", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="rent-negotiation-roadmap.pdf"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
	}
}

type marketIntelligenceRequest struct {
	Location    string  `json:"location"`
	CurrentRent float64 `json:"current_rent"`
}

func (s *Server) handleMarketIntelligence(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req marketIntelligenceRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Location) == "" {
		writeFailure(w, http.StatusBadRequest, "missing_input", "location", "location is required")
		return
	}
	if req.CurrentRent <= 0 {
		writeFailure(w, http.StatusBadRequest, "invalid_input", "current_rent", "current_rent must be positive")
		return
	}
	writeJSON(w, http.StatusOK, s.planner.MarketIntelligence(r.Context(), req.Location, req.CurrentRent))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	resp := map[string]any{
		"ok":     true,
		"uptime": strings.TrimSpace(humanize.RelTime(s.started, time.Now(), "", "")),
		"pdf":    s.pdf != nil,
	}
	if s.datasets == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.datasets.Ping(ctx); err != nil {
		resp["ok"] = false
		resp["datasets_error"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	counts, err := s.datasets.Counts(ctx)
	if err != nil {
		resp["ok"] = false
		resp["datasets_error"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp["datasets"] = counts
	resp["dataset_rows"] = humanize.Comma(counts.Predictions + counts.FairMarketRents + counts.RentIndex)
	writeJSON(w, http.StatusOK, resp)
}
