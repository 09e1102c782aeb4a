package negotiation

import "math"

// EstimateSuccess converts leverage, strategy and market/relationship signals into a
// bounded success probability.
func EstimateSuccess(leverage LeverageScore, strategy Strategy, user UserContext, market MarketContext) SuccessProbability {
	base := int(math.Round(leverage.Total*probabilitySlope + probabilityIntercept))
	overall := base + strategyModifier[strategy.Archetype]
	if market.CurrentRentVsMarket == RentSignificantlyAbove {
		overall += bonusSignificantlyAbove
	}
	if market.MarketPowerBalance == PowerTenantFavored {
		overall += bonusTenantFavored
	}
	if user.TenantHistory == HistoryVeteran {
		overall += bonusVeteranTenant
	}
	if user.LandlordRelationship == RelationshipPositive {
		overall += bonusPositiveLandlord
	}
	overall = min(max(overall, probabilityFloor), probabilityCeiling)

	return SuccessProbability{
		Overall: overall,
		Breakdown: ProbabilityBreakdown{
			MarketConditions:     leverage.Factors.Market * 10,
			RelationshipStrength: leverage.Factors.Relationship * 10,
			TimingOptimality:     leverage.Factors.Timing * 10,
			StrategyAlignment:    int(math.Round(float64(overall) * alignmentScale)),
		},
		ConfidenceInterval: ConfidenceInterval{
			Min: max(intervalFloor, overall-intervalBelow),
			Max: min(intervalCeiling, overall+intervalAbove),
		},
	}
}
