package negotiation

import (
	"fmt"
	"strings"
)

// BuildMarkdown renders a roadmap as a human-readable report. The output depends only
// on the roadmap, so the same roadmap always renders to the same document.
func BuildMarkdown(r Roadmap) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Rent Negotiation Roadmap\n\n")
	fmt.Fprintf(&b, "- Strategy: **%s**\n", sanitize(r.Strategy.Name))
	fmt.Fprintf(&b, "- Leverage: %.1f/10\n", r.LeverageScore.Total)
	fmt.Fprintf(&b, "- Success probability: %d%% (range %d-%d%%)\n", r.SuccessProbability.Overall,
		r.SuccessProbability.ConfidenceInterval.Min, r.SuccessProbability.ConfidenceInterval.Max)
	fmt.Fprintf(&b, "- Estimated duration: %s\n\n", sanitize(r.Timeline.EstimatedDuration))
	fmt.Fprintf(&b, "> %s\n\n", sanitize(r.Disclaimer))

	// --- Strategy ---
	fmt.Fprintf(&b, "## Strategy\n\n")
	fmt.Fprintf(&b, "%s\n\n", sanitize(r.Strategy.Description))
	fmt.Fprintf(&b, "**Why this strategy**: %s\n\n", sanitize(r.Strategy.Reasoning))

	// --- Leverage ---
	fmt.Fprintf(&b, "## Leverage\n\n")
	fmt.Fprintf(&b, "Each factor is scored 0-10 and weighted into the total (market %.0f%%, financial %.0f%%, relationship %.0f%%, timing %.0f%%).\n\n",
		DefaultWeights.Market*100, DefaultWeights.Financial*100, DefaultWeights.Relationship*100, DefaultWeights.Timing*100)
	fmt.Fprintf(&b, "| Factor | Score |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Market | %d |\n", r.LeverageScore.Factors.Market)
	fmt.Fprintf(&b, "| Financial | %d |\n", r.LeverageScore.Factors.Financial)
	fmt.Fprintf(&b, "| Relationship | %d |\n", r.LeverageScore.Factors.Relationship)
	fmt.Fprintf(&b, "| Timing | %d |\n\n", r.LeverageScore.Factors.Timing)
	writeList(&b, "Strengths", r.LeverageScore.Strengths)
	writeList(&b, "Weaknesses", r.LeverageScore.Weaknesses)

	// --- Success probability ---
	fmt.Fprintf(&b, "## Success Probability\n\n")
	bd := r.SuccessProbability.Breakdown
	fmt.Fprintf(&b, "| Component | Value |\n|-----------|-------|\n")
	fmt.Fprintf(&b, "| Market conditions | %d |\n", bd.MarketConditions)
	fmt.Fprintf(&b, "| Relationship strength | %d |\n", bd.RelationshipStrength)
	fmt.Fprintf(&b, "| Timing optimality | %d |\n", bd.TimingOptimality)
	fmt.Fprintf(&b, "| Strategy alignment | %d |\n\n", bd.StrategyAlignment)

	// --- Market ---
	fmt.Fprintf(&b, "## Market\n\n")
	m := r.MarketContext
	fmt.Fprintf(&b, "- Your rent vs market: `%s`\n", m.CurrentRentVsMarket)
	fmt.Fprintf(&b, "- Rent trend: `%s`\n", m.RentTrend)
	fmt.Fprintf(&b, "- Power balance: `%s`\n", m.MarketPowerBalance)
	fmt.Fprintf(&b, "- Season: `%s`\n", m.SeasonalFactor)
	fmt.Fprintf(&b, "- Vacancy: %.1f%%\n", m.LocalVacancyRate)
	if !m.ComparableRange.IsZero() {
		fmt.Fprintf(&b, "- Comparable range: %s-%s (median %s)\n", formatUSD(m.ComparableRange.Min), formatUSD(m.ComparableRange.Max), formatUSD(m.ComparableRange.Median))
	}
	fmt.Fprintf(&b, "\n")
	if mi := r.MarketIntelligence; mi != nil {
		fmt.Fprintf(&b, "### Market Intelligence (`%s`)\n\n", mi.Source)
		if mi.Source == SourceSynthetic {
			fmt.Fprintf(&b, "> No live market data was available. Figures below are estimates derived from your current rent.\n\n")
		}
		if d := mi.LocationSpecificData.AreaDescription; d != "" {
			fmt.Fprintf(&b, "%s\n\n", sanitize(d))
		}
		if ref, ok := mi.ReferenceRent(); ok {
			fmt.Fprintf(&b, "- Area average rent: %s\n", formatUSD(ref))
		}
		if g := mi.MarketTrends.RentGrowth; g != "" {
			fmt.Fprintf(&b, "- Rent growth: %s\n", sanitize(g))
		}
		if len(mi.ComparableProperties) > 0 {
			fmt.Fprintf(&b, "\n| Comparable | Rent |\n|------------|------|\n")
			for _, c := range mi.ComparableProperties {
				fmt.Fprintf(&b, "| %s | %s |\n", sanitizeCell(c.Type), formatUSD(c.Rent))
			}
		}
		fmt.Fprintf(&b, "\n")
		writeList(&b, "Evidence", mi.NegotiationEvidence)
	}

	// --- Negotiation room ---
	if r.NegotiationRoom.High > 0 {
		fmt.Fprintf(&b, "## Negotiation Room\n\n")
		fmt.Fprintf(&b, "A realistic reduction is %s-%s per month, for a target rent of %s. Based on the %s.\n\n",
			formatUSD(r.NegotiationRoom.Low), formatUSD(r.NegotiationRoom.High), formatUSD(r.NegotiationRoom.SuggestedTarget), sanitize(r.NegotiationRoom.Basis))
	}

	// --- Timeline ---
	fmt.Fprintf(&b, "## Timeline\n\n")
	fmt.Fprintf(&b, "| Phase | Duration | Status |\n|-------|----------|--------|\n")
	for _, p := range r.Timeline.Phases {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", sanitizeCell(p.Name), sanitizeCell(p.Duration), p.Status)
	}
	fmt.Fprintf(&b, "\n")
	for _, p := range r.Timeline.Phases {
		fmt.Fprintf(&b, "- **%s**: %s\n", sanitize(p.Name), sanitize(p.Description))
	}
	fmt.Fprintf(&b, "\n---\n\n")

	// --- Steps ---
	fmt.Fprintf(&b, "## Steps\n\n")
	for _, s := range r.Steps {
		fmt.Fprintf(&b, "### %d. %s\n\n", s.Order, sanitize(s.Title))
		fmt.Fprintf(&b, "%s\n\n", sanitize(s.Description))
		fmt.Fprintf(&b, "- Difficulty: %s\n- Time: %s\n\n", s.Difficulty, sanitize(s.TimeEstimate))
		for _, a := range s.ActionItems {
			fmt.Fprintf(&b, "- [ ] %s (`%s`, %s priority)\n", sanitize(a.Description), a.Type, a.Priority)
		}
		fmt.Fprintf(&b, "\n")
		writeList(&b, "Tips", s.Tips)
		writeList(&b, "Risks", s.RiskFactors)
		if t := s.Template; t != nil {
			if t.Subject != "" {
				fmt.Fprintf(&b, "**Subject**: %s\n\n", sanitize(t.Subject))
			}
			if t.Email != "" {
				fmt.Fprintf(&b, "```text\n%s\n```\n\n", strings.TrimSpace(t.Email))
			}
			if t.PhoneScript != "" {
				fmt.Fprintf(&b, "**Phone script**: %s\n\n", sanitize(t.PhoneScript))
			}
		}
	}
	fmt.Fprintf(&b, "---\n\n")

	// --- Guidance ---
	fmt.Fprintf(&b, "## Guidance\n\n")
	writeList(&b, "Recommendations", r.Guidance.CurrentRecommendations)
	writeList(&b, "Warnings", r.Guidance.WarningFlags)
	writeList(&b, "Opportunities", r.Guidance.OpportunityAlerts)
	writeList(&b, "Next best actions", r.Guidance.NextBestActions)

	if len(r.AdaptationTriggers) > 0 {
		fmt.Fprintf(&b, "## If Things Change\n\n")
		fmt.Fprintf(&b, "| If | Then |\n|----|------|\n")
		for _, a := range r.AdaptationTriggers {
			fmt.Fprintf(&b, "| %s | %s |\n", sanitizeCell(a.Condition), sanitizeCell(a.Adjustment))
		}
		fmt.Fprintf(&b, "\n")
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**\n\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", sanitize(it))
	}
	fmt.Fprintf(b, "\n")
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

// sanitizeCell also escapes pipes so table columns survive.
func sanitizeCell(s string) string {
	return strings.ReplaceAll(sanitize(s), "|", "\\|")
}
