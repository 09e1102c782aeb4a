package negotiation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func TestParseEvidenceExtractsSignals(t *testing.T) {
	text := "Similar two-bedroom units rent for $1,850 and $1,900.00, while luxury units go for $4,500. " +
		"Vacancy rates are high and rents declined 3.5% this year."
	got := ParseEvidence(text, 2000)

	wantComps := []ComparableProperty{{Rent: 1850, Type: "reported"}, {Rent: 1900, Type: "reported"}}
	if diff := cmp.Diff(wantComps, got.ComparableProperties); diff != "" {
		t.Fatalf("comparables (-want +got):\n%s", diff)
	}
	if got.MarketTrends.AvgRent == nil || *got.MarketTrends.AvgRent != 1875 {
		t.Fatalf("expected avg 1875, got %+v", got.MarketTrends.AvgRent)
	}
	if got.MarketTrends.MarketCondition != PowerTenantFavored {
		t.Fatalf("expected tenant-favored, got %s", got.MarketTrends.MarketCondition)
	}
	if got.MarketTrends.RentGrowth != "-3.5%" {
		t.Fatalf("unexpected growth %q", got.MarketTrends.RentGrowth)
	}
	if diff := cmp.Diff([]string{evidenceHighVacancy, evidenceDeclining}, got.NegotiationEvidence); diff != "" {
		t.Fatalf("evidence (-want +got):\n%s", diff)
	}
	want := "Similar two-bedroom units rent for $1,850 and $1,900.00, while luxury units go for $4,500"
	if got.LocationSpecificData.AreaDescription != want {
		t.Fatalf("unexpected area description %q", got.LocationSpecificData.AreaDescription)
	}
}

func TestParseEvidenceLandlordMarket(t *testing.T) {
	got := ParseEvidence("The market is very competitive with low vacancy.", 1800)
	if got.MarketTrends.MarketCondition != PowerLandlordFavored {
		t.Fatalf("expected landlord-favored, got %s", got.MarketTrends.MarketCondition)
	}
	if got.MarketTrends.RentGrowth != "stable" {
		t.Fatalf("expected stable growth, got %q", got.MarketTrends.RentGrowth)
	}
	if !got.Empty() {
		t.Fatalf("expected no comparables or evidence, got %+v", got)
	}
}

func TestParseEvidenceBelowMarket(t *testing.T) {
	got := ParseEvidence("Plenty of cheaper listings nearby around $1,400.", 1600)
	if len(got.NegotiationEvidence) != 1 || got.NegotiationEvidence[0] != evidenceBelowMarket {
		t.Fatalf("unexpected evidence: %v", got.NegotiationEvidence)
	}
	if len(got.ComparableProperties) != 1 || got.ComparableProperties[0].Rent != 1400 {
		t.Fatalf("unexpected comparables: %+v", got.ComparableProperties)
	}
}

func TestParseEvidenceEmptyText(t *testing.T) {
	got := ParseEvidence("", 1500)
	if got.ComparableProperties == nil || got.NegotiationEvidence == nil {
		t.Fatal("lists must be non-nil")
	}
	if !got.Empty() || got.MarketTrends.AvgRent != nil {
		t.Fatalf("expected empty record, got %+v", got)
	}
	if got.MarketTrends.MarketCondition != PowerBalanced {
		t.Fatalf("expected balanced, got %s", got.MarketTrends.MarketCondition)
	}
}

func TestFirstSentenceTruncates(t *testing.T) {
	long := ""
	for len(long) < 400 {
		long += "word "
	}
	got := firstSentence(long)
	if len(got) > maxAreaDescription+3 {
		t.Fatalf("description too long: %d", len(got))
	}
}

func TestParseEvidenceSignsGrowthFromDirectionWords(t *testing.T) {
	cases := map[string]string{
		"Rents in the area have fallen 3% over the past year.":    "-3%",
		"Asking rents are down 2.5 percent from last spring.":     "-2.5%",
		"Rents rose 4% this year.":                                "+4%",
		"Prices climbed 6% after the new campus opened.":          "+6%",
		"About 40% of units are two-bedroom apartments.":          "40%",
		"Rents held at +1% while vacancy dropped in the suburbs.": "+1%",
	}
	for text, want := range cases {
		if got := ParseEvidence(text, 2000).MarketTrends.RentGrowth; got != want {
			t.Fatalf("%q: growth %q, want %q", text, got, want)
		}
	}
}

func TestParseEvidenceFallenRentsAreDeclining(t *testing.T) {
	got := ParseEvidence("Rents in the area have fallen 3% over the past year. Comparable units list at $1,850 and $1,900.", 2000)
	if got.MarketTrends.MarketCondition != PowerTenantFavored {
		t.Fatalf("expected tenant-favored, got %s", got.MarketTrends.MarketCondition)
	}
	if diff := cmp.Diff([]string{evidenceDeclining}, got.NegotiationEvidence); diff != "" {
		t.Fatalf("evidence (-want +got):\n%s", diff)
	}
}

func TestParseEvidenceVacancyDecreaseIsNotRentDecline(t *testing.T) {
	got := ParseEvidence("Vacancy has decreased sharply and the market is competitive, with units renting for $2,100.", 2000)
	if got.MarketTrends.MarketCondition != PowerLandlordFavored {
		t.Fatalf("expected landlord-favored, got %s", got.MarketTrends.MarketCondition)
	}
	if len(got.NegotiationEvidence) != 0 {
		t.Fatalf("expected no evidence, got %v", got.NegotiationEvidence)
	}

	got = ParseEvidence("Vacancy has decreased, so the area is no longer soft.", 2000)
	if got.MarketTrends.MarketCondition != PowerLandlordFavored {
		t.Fatalf("expected vacancy decrease to favor landlords, got %s", got.MarketTrends.MarketCondition)
	}
}

func TestFirstSentenceKeepsValidUTF8(t *testing.T) {
	got := firstSentence("a" + strings.Repeat("é", 200))
	if !utf8.ValidString(got) {
		t.Fatalf("area description is invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "é...") {
		t.Fatalf("expected truncation on a rune boundary, got %q", got[len(got)-8:])
	}
}
