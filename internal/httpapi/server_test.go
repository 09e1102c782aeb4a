package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joelkehle/lease-negotiator/internal/marketdata"
	"github.com/joelkehle/lease-negotiator/internal/negotiation"
)

const validRequest = `{
  "user": {
    "current_rent": 2000,
    "budget_flexibility": "moderate",
    "employment_stability": "stable",
    "landlord_relationship": "positive",
    "tenant_history": "experienced",
    "risk_tolerance": "moderate",
    "alternative_options": 2,
    "moving_flexibility": "willing-to-move"
  },
  "market": {
    "current_rent_vs_market": "above",
    "local_vacancy_rate": 6,
    "rent_trend": "stable",
    "seasonal_factor": "normal",
    "market_power_balance": "balanced"
  },
  "situation": {
    "lease_status": "renewal-period",
    "time_until_decision": 30,
    "primary_goal": "lower-rent"
  }
}`

type fakePDF struct {
	calls int
	title string
	err   error
}

func (f *fakePDF) Render(_ context.Context, title, report string) ([]byte, error) {
	f.calls++
	f.title = title
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 " + report[:10]), nil
}

type fakeDatasets struct {
	pingErr error
	counts  marketdata.Counts
}

func (f fakeDatasets) Ping(context.Context) error { return f.pingErr }

func (f fakeDatasets) Counts(context.Context) (marketdata.Counts, error) { return f.counts, nil }

func newServerForTest(pdf PDFRenderer) http.Handler {
	return NewServer(negotiation.NewEngine(nil), nil, pdf)
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rr.Body.String())
	}
}

func TestRoadmapEndpoint(t *testing.T) {
	h := newServerForTest(nil)
	rr := post(t, h, "/v1/roadmap", validRequest)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var roadmap negotiation.Roadmap
	decode(t, rr, &roadmap)
	if roadmap.Strategy.Name == "" || len(roadmap.Steps) != 5 {
		t.Fatalf("unexpected roadmap: %+v", roadmap)
	}
	if roadmap.MarketIntelligence != nil {
		t.Fatal("expected no market intelligence without a location")
	}
	if roadmap.Disclaimer != negotiation.Disclaimer {
		t.Fatalf("missing disclaimer: %q", roadmap.Disclaimer)
	}
}

func TestRoadmapEndpointRejectsBadInput(t *testing.T) {
	h := newServerForTest(nil)

	rr := post(t, h, "/v1/roadmap", `{"user":`)
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "invalid_json") {
		t.Fatalf("expected invalid_json 400, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = post(t, h, "/v1/roadmap", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp struct {
		OK    bool `json:"ok"`
		Error struct {
			Code  string `json:"code"`
			Field string `json:"field"`
		} `json:"error"`
	}
	decode(t, rr, &resp)
	if resp.OK || resp.Error.Code != "missing_input" || resp.Error.Field != "user" {
		t.Fatalf("unexpected error body: %+v", resp)
	}

	bad := strings.Replace(validRequest, `"local_vacancy_rate": 6`, `"local_vacancy_rate": 140`, 1)
	rr = post(t, h, "/v1/roadmap", bad)
	decode(t, rr, &resp)
	if rr.Code != http.StatusBadRequest || resp.Error.Code != "invalid_input" || resp.Error.Field != "market.local_vacancy_rate" {
		t.Fatalf("unexpected response %d: %+v", rr.Code, resp)
	}
}

func TestRoadmapEndpointMethodNotAllowed(t *testing.T) {
	h := newServerForTest(nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/roadmap", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestReportFormats(t *testing.T) {
	pdf := &fakePDF{}
	h := newServerForTest(pdf)

	rr := post(t, h, "/v1/roadmap/report", validRequest)
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/markdown") {
		t.Fatalf("unexpected markdown response %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Body.String(), "# Rent Negotiation Roadmap") {
		t.Fatalf("unexpected markdown body: %s", rr.Body.String())
	}

	rr = post(t, h, "/v1/roadmap/report?format=html", validRequest)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "<article class='report'>") {
		t.Fatalf("unexpected html response %d", rr.Code)
	}

	rr = post(t, h, "/v1/roadmap/report?format=pdf", validRequest)
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected pdf response %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
	if pdf.calls != 1 || pdf.title != reportTitle || !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("pdf renderer not used: %+v", pdf)
	}

	rr = post(t, h, "/v1/roadmap/report?format=docx", validRequest)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", rr.Code)
	}
}

func TestReportPDFFailures(t *testing.T) {
	rr := post(t, newServerForTest(nil), "/v1/roadmap/report?format=pdf", validRequest)
	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501 without renderer, got %d", rr.Code)
	}

	rr = post(t, newServerForTest(&fakePDF{err: errors.New("chrome missing")}), "/v1/roadmap/report?format=pdf", validRequest)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on render failure, got %d", rr.Code)
	}
}

func TestMarketIntelligenceEndpoint(t *testing.T) {
	h := newServerForTest(nil)

	rr := post(t, h, "/v1/market-intelligence", `{"location":"Austin, TX","current_rent":1800}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var intel negotiation.MarketIntelligence
	decode(t, rr, &intel)
	if intel.Source != negotiation.SourceSynthetic || len(intel.ComparableProperties) == 0 {
		t.Fatalf("expected synthetic intelligence without sources: %+v", intel)
	}

	for _, body := range []string{`{"current_rent":1800}`, `{"location":"Austin, TX"}`} {
		if rr := post(t, h, "/v1/market-intelligence", body); rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rr.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	get := func(h http.Handler) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
		return rr
	}

	rr := get(newServerForTest(nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected health %d: %s", rr.Code, rr.Body.String())
	}

	ds := fakeDatasets{counts: marketdata.Counts{Predictions: 1200, FairMarketRents: 3, RentIndex: 1}}
	rr = get(NewServer(negotiation.NewEngine(nil), ds, nil))
	var resp map[string]any
	decode(t, rr, &resp)
	if resp["dataset_rows"] != "1,204" {
		t.Fatalf("unexpected dataset rows: %v", resp)
	}

	rr = get(NewServer(negotiation.NewEngine(nil), fakeDatasets{pingErr: errors.New("down")}, nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when datasets are down, got %d", rr.Code)
	}
}

func TestRoadmapWithSeededStore(t *testing.T) {
	ctx := context.Background()
	store, err := marketdata.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "market.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	err = store.Seed(ctx, marketdata.SeedData{
		RentIndex: []marketdata.RentIndexRecord{{MetroArea: "Austin", Period: "2026-09", MedianRent: 1700, YoYChangePercent: -2.4}},
	}, true)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	engine := negotiation.NewEngine(negotiation.NewFusion(negotiation.Sources{Predictions: store, Baselines: store, Index: store}))
	h := NewServer(engine, store, nil)
	body := strings.Replace(validRequest, `"situation"`, `"location": "Austin, TX", "situation"`, 1)
	rr := post(t, h, "/v1/roadmap", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var roadmap negotiation.Roadmap
	decode(t, rr, &roadmap)
	if roadmap.MarketIntelligence == nil || roadmap.MarketIntelligence.Source != negotiation.SourceDatasets {
		t.Fatalf("expected dataset intelligence, got %+v", roadmap.MarketIntelligence)
	}
}
