package negotiation

import (
	"fmt"
	"math"
)

// ScoreLeverage combines market, financial, relationship and timing sub-scores into a
// weighted 0-10 total. It is a pure function of its inputs.
func ScoreLeverage(user UserContext, market MarketContext, situation SituationContext) LeverageScore {
	f := LeverageFactors{
		Market:       marketFactor(market),
		Financial:    financialFactor(user),
		Relationship: relationshipFactor(user),
		Timing:       timingFactor(market, situation),
	}
	w := DefaultWeights
	total := w.Market*float64(f.Market) + w.Financial*float64(f.Financial) +
		w.Relationship*float64(f.Relationship) + w.Timing*float64(f.Timing)

	out := LeverageScore{
		Total:      math.Round(total*10) / 10,
		Factors:    f,
		Strengths:  []string{},
		Weaknesses: []string{},
	}
	for _, d := range factorDescriptions(f) {
		switch {
		case d.score >= strengthThreshold:
			out.Strengths = append(out.Strengths, fmt.Sprintf("%s (%d/10)", d.strength, d.score))
		case d.score <= weaknessThreshold:
			out.Weaknesses = append(out.Weaknesses, fmt.Sprintf("%s (%d/10)", d.weakness, d.score))
		}
	}
	return out
}

type factorDescription struct {
	score    int
	strength string
	weakness string
}

func factorDescriptions(f LeverageFactors) []factorDescription {
	return []factorDescription{
		{f.Market, "Strong market position", "Weak market position"},
		{f.Financial, "Financial flexibility and alternatives", "Limited financial flexibility"},
		{f.Relationship, "Good standing with your landlord", "Fragile landlord relationship"},
		{f.Timing, "Favorable timing", "Unfavorable timing"},
	}
}

func marketFactor(m MarketContext) int {
	s := factorBaseline
	s += rentPositionDelta[m.CurrentRentVsMarket]
	for _, band := range vacancyBands {
		if (band.above && m.LocalVacancyRate > band.limit) || (!band.above && m.LocalVacancyRate < band.limit) {
			s += band.delta
			break
		}
	}
	s += rentTrendDelta[m.RentTrend]
	s += powerBalanceDelta[m.MarketPowerBalance]
	return clampFactor(s)
}

func financialFactor(u UserContext) int {
	s := factorBaseline
	s += budgetDelta[u.BudgetFlexibility]
	s += employmentDelta[u.EmploymentStability]
	switch {
	case u.AlternativeOptions >= manyAlternatives:
		s += 2
	case u.AlternativeOptions == 0:
		s -= 2
	}
	s += movingDelta[u.MovingFlexibility]
	return clampFactor(s)
}

func relationshipFactor(u UserContext) int {
	s := factorBaseline
	s += relationshipDelta[u.LandlordRelationship]
	s += historyDelta[u.TenantHistory]
	return clampFactor(s)
}

func timingFactor(m MarketContext, sit SituationContext) int {
	s := factorBaseline
	s += seasonDelta[m.SeasonalFactor]
	switch {
	case sit.TimeUntilDecision > longRunwayDays:
		s++
	case sit.TimeUntilDecision < shortRunwayDays:
		s -= 2
	}
	s += leaseStatusDelta[sit.LeaseStatus]
	return clampFactor(s)
}

func clampFactor(v int) int {
	return min(max(v, factorMin), factorMax)
}
