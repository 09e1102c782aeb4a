package negotiation

import (
	"context"
	"strings"
	"testing"
)

func TestBuildMarkdownSections(t *testing.T) {
	e := NewEngine(NewFusion(datasetSources()))
	r, err := e.GenerateRoadmap(context.Background(), request(neutralUser(), neutralMarket(), baseSituation(), "Austin, TX"))
	if err != nil {
		t.Fatalf("GenerateRoadmap: %v", err)
	}
	md := BuildMarkdown(r)
	for _, want := range []string{
		"# Rent Negotiation Roadmap",
		r.Strategy.Name,
		"## Leverage",
		"### Market Intelligence (`dataset`)",
		"## Negotiation Room",
		"## Steps",
		"### 5. ",
		"```text",
		"## If Things Change",
		Disclaimer,
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q", want)
		}
	}
	if md != BuildMarkdown(r) {
		t.Fatal("expected deterministic markdown")
	}
}

func TestBuildMarkdownFlagsSyntheticData(t *testing.T) {
	intel := SyntheticIntelligence(1800)
	r := Roadmap{MarketIntelligence: &intel, Disclaimer: Disclaimer}
	md := BuildMarkdown(r)
	if !strings.Contains(md, "No live market data was available") {
		t.Fatal("expected synthetic data note")
	}
	if strings.Contains(md, "## Negotiation Room") {
		t.Fatal("did not expect negotiation room without a range")
	}
}

func TestSanitizeCellEscapesPipes(t *testing.T) {
	if got := sanitizeCell("a|b\nc"); got != `a\|b c` {
		t.Fatalf("unexpected cell %q", got)
	}
}
