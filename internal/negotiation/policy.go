package negotiation

// Scoring policy. Every weight, delta and modifier the engine applies lives here.

const (
	factorBaseline = 5
	factorMin      = 0
	factorMax      = 10

	strengthThreshold = 7
	weaknessThreshold = 3
)

type FactorWeights struct {
	Market       float64
	Financial    float64
	Relationship float64
	Timing       float64
}

var DefaultWeights = FactorWeights{
	Market:       0.40,
	Financial:    0.25,
	Relationship: 0.20,
	Timing:       0.15,
}

var rentPositionDelta = map[RentPosition]int{
	RentSignificantlyAbove: 3,
	RentAbove:              2,
	RentBelow:              -1,
}

var rentTrendDelta = map[RentTrend]int{
	TrendDecreasing: 2,
	TrendIncreasing: -1,
}

var powerBalanceDelta = map[PowerBalance]int{
	PowerTenantFavored:   2,
	PowerLandlordFavored: -2,
}

var budgetDelta = map[BudgetFlexibility]int{
	BudgetFlexible: 2,
	BudgetTight:    -2,
}

var employmentDelta = map[EmploymentStability]int{
	EmploymentStable:   1,
	EmploymentUnstable: -2,
}

var movingDelta = map[MovingFlexibility]int{
	MovingEager:     1,
	MovingCommitted: -1,
}

var relationshipDelta = map[LandlordRelationship]int{
	RelationshipPositive: 3,
	RelationshipNeutral:  1,
	RelationshipStrained: -3,
}

var historyDelta = map[TenantHistory]int{
	HistoryVeteran:     2,
	HistoryExperienced: 1,
	HistoryFirstTime:   -1,
}

var seasonDelta = map[SeasonalFactor]int{
	SeasonSlow: 2,
	SeasonPeak: -1,
}

var leaseStatusDelta = map[LeaseStatus]int{
	LeaseRenewalPeriod:  1,
	LeasePreApplication: -1,
}

// Vacancy thresholds are percentages; the first matching band applies.
var vacancyBands = []struct {
	above bool
	limit float64
	delta int
}{
	{above: true, limit: 7, delta: 2},
	{above: true, limit: 5, delta: 1},
	{above: false, limit: 3, delta: -2},
}

const (
	longRunwayDays  = 30
	shortRunwayDays = 7

	manyAlternatives = 3

	shortTimelineDays = 14
)

// Success probability policy.
const (
	probabilitySlope     = 7.0
	probabilityIntercept = 30.0
	probabilityFloor     = 10
	probabilityCeiling   = 95

	intervalBelow   = 15
	intervalAbove   = 10
	intervalFloor   = 5
	intervalCeiling = 100

	alignmentScale = 0.8
)

var strategyModifier = map[Archetype]int{
	ArchetypeAssertiveCollaborative: 5,
	ArchetypeCollaborative:          0,
	ArchetypeRelationshipBuilding:   -10,
	ArchetypeLeverageFocused:        10,
	ArchetypeStrategicPatience:      -5,
}

const (
	bonusSignificantlyAbove = 15
	bonusTenantFavored      = 10
	bonusVeteranTenant      = 5
	bonusPositiveLandlord   = 10
)

// Market position thresholds used when fused intelligence re-derives the rent position.
const (
	ratioSignificantlyAbove = 1.15
	ratioAbove              = 1.05
	ratioBelow              = 0.95
)

// Fallback reduction share by market position when no fused average rent exists.
var positionRoomShare = map[RentPosition]float64{
	RentSignificantlyAbove: 0.10,
	RentAbove:              0.05,
	RentAt:                 0.02,
	RentBelow:              0,
}
