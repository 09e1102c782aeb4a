package negotiation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EnrichMarketContext returns a copy of market refined by fused intelligence. Synthetic
// intelligence only fills an empty comparable range; it never overrides the caller's
// labels.
func EnrichMarketContext(market MarketContext, user UserContext, intel *MarketIntelligence) MarketContext {
	out := market
	if intel == nil {
		return out
	}
	if r, ok := comparableRange(intel.ComparableProperties); ok && (intel.Source != SourceSynthetic || out.ComparableRange.IsZero()) {
		out.ComparableRange = r
	}
	if intel.Source == SourceSynthetic {
		return out
	}
	if ref, ok := intel.ReferenceRent(); ok && user.CurrentRent > 0 {
		out.CurrentRentVsMarket = positionFromRatio(user.CurrentRent / ref)
	}
	switch c := intel.MarketTrends.MarketCondition; c {
	case PowerTenantFavored, PowerLandlordFavored:
		out.MarketPowerBalance = c
	}
	if trend, ok := trendFromGrowth(intel.MarketTrends.RentGrowth); ok {
		out.RentTrend = trend
	}
	return out
}

func positionFromRatio(ratio float64) RentPosition {
	switch {
	case ratio >= ratioSignificantlyAbove:
		return RentSignificantlyAbove
	case ratio >= ratioAbove:
		return RentAbove
	case ratio <= ratioBelow:
		return RentBelow
	default:
		return RentAt
	}
}

// trendFromGrowth reads a signed growth figure such as "+3.0%" or "-1.5%". Unsigned
// figures carry no direction and are ignored.
func trendFromGrowth(growth string) (RentTrend, bool) {
	g := strings.TrimSpace(growth)
	if !strings.HasPrefix(g, "+") && !strings.HasPrefix(g, "-") {
		return "", false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(g, "%"), 64)
	if err != nil {
		return "", false
	}
	switch {
	case v > 1:
		return TrendIncreasing, true
	case v < -1:
		return TrendDecreasing, true
	default:
		return TrendStable, true
	}
}

// EstimateNegotiationRoom sizes a plausible monthly reduction from the gap to the
// fused average rent, or from the market position when no real average is known.
func EstimateNegotiationRoom(user UserContext, market MarketContext, situation SituationContext, leverage LeverageScore, intel *MarketIntelligence) NegotiationRoom {
	rent := user.CurrentRent
	var gap float64
	basis := ""
	if intel != nil && intel.Source != SourceSynthetic {
		if ref, ok := intel.ReferenceRent(); ok && ref < rent {
			gap = rent - ref
			basis = fmt.Sprintf("gap between your rent and the area average of %s", formatUSD(ref))
		}
	}
	if basis == "" {
		gap = rent * positionRoomShare[market.CurrentRentVsMarket]
		basis = fmt.Sprintf("typical room when rent is %s market", market.CurrentRentVsMarket)
	}

	high := math.Round(gap * (0.5 + leverage.Total/20))
	low := math.Round(high * 0.4)
	reduction := high
	if situation.TargetReduction > 0 {
		reduction = situation.TargetReduction
	}
	return NegotiationRoom{
		Low:             low,
		High:            high,
		SuggestedTarget: math.Round(max(rent-reduction, 0)),
		Basis:           basis,
	}
}
