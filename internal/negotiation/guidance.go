package negotiation

import "fmt"

const maxEvidenceActions = 3

type guidanceInput struct {
	user      UserContext
	market    MarketContext
	situation SituationContext
	leverage  LeverageScore
	strategy  Strategy
	intel     *MarketIntelligence
	room      NegotiationRoom
}

// SynthesizeGuidance derives recommendations, warnings, opportunities and next actions
// from already computed roadmap fields.
func SynthesizeGuidance(user UserContext, market MarketContext, situation SituationContext, leverage LeverageScore, strategy Strategy, intel *MarketIntelligence, room NegotiationRoom) Guidance {
	in := guidanceInput{user: user, market: market, situation: situation, leverage: leverage, strategy: strategy, intel: intel, room: room}
	return Guidance{
		CurrentRecommendations: recommendations(in),
		WarningFlags:           warnings(in),
		OpportunityAlerts:      opportunities(in),
		NextBestActions:        nextActions(in),
	}
}

func recommendations(in guidanceInput) []string {
	out := []string{}
	switch t := in.leverage.Total; {
	case t >= 7:
		out = append(out, fmt.Sprintf("Strong leverage (%.1f/10): negotiate confidently and lead with your market evidence.", t))
	case t >= 4:
		out = append(out, fmt.Sprintf("Moderate leverage (%.1f/10): make a reasoned ask and be ready to trade for non-rent concessions.", t))
	default:
		out = append(out, fmt.Sprintf("Limited leverage (%.1f/10): focus on goodwill and small, low-risk requests.", t))
	}
	out = append(out, fmt.Sprintf("Follow the %s playbook: %s", in.strategy.Name, in.strategy.Description))
	if len(in.leverage.Strengths) > 0 {
		out = append(out, "Emphasize your strongest point: "+in.leverage.Strengths[0]+".")
	}
	if in.room.High > 0 {
		out = append(out, fmt.Sprintf("A reduction of %s-%s per month is a realistic range.", formatUSD(in.room.Low), formatUSD(in.room.High)))
	}
	return out
}

func warnings(in guidanceInput) []string {
	out := []string{}
	if in.situation.TimeUntilDecision < shortRunwayDays {
		out = append(out, fmt.Sprintf("Limited time: only %d day(s) until your decision deadline. Send your request immediately.", in.situation.TimeUntilDecision))
	}
	if in.user.LandlordRelationship == RelationshipStrained {
		out = append(out, "Your landlord relationship is strained; an aggressive ask could backfire.")
	}
	if in.user.AlternativeOptions == 0 && in.user.MovingFlexibility == MovingCommitted {
		out = append(out, "You have no alternative housing lined up, so avoid any ultimatum you cannot follow through on.")
	}
	if in.user.EmploymentStability == EmploymentUnstable {
		out = append(out, "Unstable income weakens your position; avoid commitments you may not be able to keep.")
	}
	if in.market.RentTrend == TrendIncreasing && in.market.MarketPowerBalance == PowerLandlordFavored {
		out = append(out, "Rents are rising in a landlord-favored market; holding your current rent may be the realistic goal.")
	}
	if in.situation.TargetReduction > 0 && in.room.High > 0 && in.situation.TargetReduction > in.room.High {
		out = append(out, fmt.Sprintf("Your target reduction of %s exceeds the estimated room of %s.", formatUSD(in.situation.TargetReduction), formatUSD(in.room.High)))
	}
	return out
}

func opportunities(in guidanceInput) []string {
	out := []string{}
	if in.market.CurrentRentVsMarket == RentSignificantlyAbove {
		out = append(out, "Your rent is significantly above market, which is the strongest argument for a reduction.")
	}
	if in.market.RentTrend == TrendDecreasing {
		out = append(out, "Rents are decreasing locally; landlords are more willing to negotiate to avoid vacancy.")
	}
	if in.market.SeasonalFactor == SeasonSlow {
		out = append(out, "It is the slow leasing season, when landlords find it hardest to fill units.")
	}
	if in.market.LocalVacancyRate > 7 {
		out = append(out, fmt.Sprintf("Vacancy is high at %.1f%%, giving you more alternatives.", in.market.LocalVacancyRate))
	}
	if in.intel != nil {
		if ref, ok := in.intel.ReferenceRent(); ok && in.user.CurrentRent > ref {
			pct := (in.user.CurrentRent - ref) / ref * 100
			out = append(out, fmt.Sprintf("You pay %.1f%% above the area average of %s.", pct, formatUSD(ref)))
		}
	}
	return out
}

func nextActions(in guidanceInput) []string {
	out := []string{}
	if in.intel != nil {
		for _, e := range in.intel.NegotiationEvidence {
			if len(out) == maxEvidenceActions {
				break
			}
			out = append(out, "Cite in your request: "+e)
		}
	}
	if len(out) == 0 {
		out = append(out,
			"Gather 3-5 comparable listings within a mile of your unit",
			"Draft a short, polite written request to your landlord")
	}
	return out
}

var rejectionAdjustments = map[Archetype]string{
	ArchetypeAssertiveCollaborative: "Ask what number would work for them and offer a longer lease in exchange.",
	ArchetypeCollaborative:          "Propose a smaller reduction paired with a renewal commitment.",
	ArchetypeRelationshipBuilding:   "Drop the price request for now and revisit after a few months of good standing.",
	ArchetypeLeverageFocused:        "Follow through on your best alternative or restate your deadline once.",
	ArchetypeStrategicPatience:      "Wait for softer market signals and ask again before the renewal deadline.",
}

// AdaptationTriggers lists conditions that should prompt a change of course.
func AdaptationTriggers(strategy Strategy, user UserContext, market MarketContext, situation SituationContext, room NegotiationRoom) []AdaptationTrigger {
	out := []AdaptationTrigger{
		{Condition: "Landlord rejects the request outright", Adjustment: rejectionAdjustments[strategy.Archetype]},
		{Condition: "Landlord counters with a smaller reduction", Adjustment: fmt.Sprintf("Accept offers within %s-%s per month, or bridge the gap with non-rent concessions.", formatUSD(room.Low), formatUSD(room.High))},
		{Condition: fmt.Sprintf("New comparable listings appear below %s", formatUSD(user.CurrentRent)), Adjustment: "Add them to your evidence and restate your number."},
	}
	if situation.TimeUntilDecision < shortTimelineDays {
		out = append(out, AdaptationTrigger{Condition: "Decision deadline arrives without agreement", Adjustment: "Ask for a short extension or a month-to-month term while talks continue."})
	}
	if market.RentTrend == TrendIncreasing {
		out = append(out, AdaptationTrigger{Condition: "Area rents keep rising", Adjustment: "Shift the goal to holding your current rent rather than reducing it."})
	}
	if user.LandlordRelationship == RelationshipStrained {
		out = append(out, AdaptationTrigger{Condition: "Landlord responds with hostility", Adjustment: "Pause price talks and keep all communication in writing."})
	}
	return out
}
