package negotiation

import "fmt"

type archetypeInfo struct {
	name        string
	description string
}

var archetypeCatalog = map[Archetype]archetypeInfo{
	ArchetypeAssertiveCollaborative: {
		name:        "Assertive Collaborative",
		description: "Lead with market evidence and a specific number while framing the request as a win for both sides.",
	},
	ArchetypeCollaborative: {
		name:        "Collaborative Approach",
		description: "Use the softening market to open a joint problem-solving conversation about a fair rate.",
	},
	ArchetypeRelationshipBuilding: {
		name:        "Relationship Building",
		description: "Repair and strengthen the landlord relationship first, then ask for modest, low-risk concessions.",
	},
	ArchetypeLeverageFocused: {
		name:        "Leverage-Focused",
		description: "Make your alternatives explicit and set a clear deadline, accepting some relationship risk for a larger reduction.",
	},
	ArchetypeStrategicPatience: {
		name:        "Strategic Patience",
		description: "Build your case and options quietly, and time the request for the moment your leverage peaks.",
	},
}

type strategyRule struct {
	archetype Archetype
	matches   func(LeverageScore, UserContext, MarketContext) bool
	reasoning func(LeverageScore, UserContext, MarketContext) string
}

// strategyRules is evaluated top to bottom; the first match wins. The last rule always
// matches.
var strategyRules = []strategyRule{
	{
		archetype: ArchetypeAssertiveCollaborative,
		matches: func(l LeverageScore, u UserContext, _ MarketContext) bool {
			return l.Total >= 7 && u.LandlordRelationship != RelationshipStrained
		},
		reasoning: func(l LeverageScore, u UserContext, _ MarketContext) string {
			return fmt.Sprintf("Leverage of %.1f/10 and a %s landlord relationship let you ask firmly without risking goodwill.", l.Total, u.LandlordRelationship)
		},
	},
	{
		archetype: ArchetypeCollaborative,
		// a strained relationship always falls through to relationship building
		matches: func(l LeverageScore, u UserContext, m MarketContext) bool {
			return l.Total >= 5 && m.RentTrend == TrendDecreasing && u.LandlordRelationship != RelationshipStrained
		},
		reasoning: func(l LeverageScore, _ UserContext, _ MarketContext) string {
			return fmt.Sprintf("Rents are decreasing and your leverage is %.1f/10, so the landlord has reason to work with you on a fair rate.", l.Total)
		},
	},
	{
		archetype: ArchetypeRelationshipBuilding,
		matches: func(l LeverageScore, u UserContext, _ MarketContext) bool {
			return u.LandlordRelationship == RelationshipStrained || l.Total < 3
		},
		reasoning: func(l LeverageScore, u UserContext, _ MarketContext) string {
			if u.LandlordRelationship == RelationshipStrained {
				return "A strained relationship undermines any direct ask; rebuilding trust comes before negotiating price."
			}
			return fmt.Sprintf("Leverage of %.1f/10 is too low to press on price; goodwill is your best asset right now.", l.Total)
		},
	},
	{
		archetype: ArchetypeLeverageFocused,
		matches: func(l LeverageScore, u UserContext, _ MarketContext) bool {
			return l.Total >= 6 && u.RiskTolerance == RiskAggressive
		},
		reasoning: func(l LeverageScore, _ UserContext, _ MarketContext) string {
			return fmt.Sprintf("Leverage of %.1f/10 and a high tolerance for risk support making your alternatives explicit.", l.Total)
		},
	},
	{
		archetype: ArchetypeStrategicPatience,
		matches:   func(LeverageScore, UserContext, MarketContext) bool { return true },
		reasoning: func(l LeverageScore, _ UserContext, _ MarketContext) string {
			return fmt.Sprintf("Leverage of %.1f/10 is workable but not decisive; strengthening your position before asking improves the odds.", l.Total)
		},
	},
}

// SelectStrategy picks the first archetype whose rule matches. It depends only on the
// leverage total, landlord relationship, rent trend and risk tolerance.
func SelectStrategy(leverage LeverageScore, user UserContext, market MarketContext) Strategy {
	for _, r := range strategyRules {
		if r.matches(leverage, user, market) {
			return newStrategy(r.archetype, r.reasoning(leverage, user, market))
		}
	}
	return newStrategy(ArchetypeStrategicPatience, "")
}

func newStrategy(a Archetype, reasoning string) Strategy {
	info := archetypeCatalog[a]
	return Strategy{Archetype: a, Name: info.name, Description: info.description, Reasoning: reasoning}
}
