package negotiation

const Disclaimer = "This roadmap is an automated negotiation aid, not legal or financial advice. " +
	"Market figures may be estimates when live data is unavailable."

type BudgetFlexibility string

const (
	BudgetTight    BudgetFlexibility = "tight"
	BudgetModerate BudgetFlexibility = "moderate"
	BudgetFlexible BudgetFlexibility = "flexible"
)

type EmploymentStability string

const (
	EmploymentStable   EmploymentStability = "stable"
	EmploymentVariable EmploymentStability = "variable"
	EmploymentUnstable EmploymentStability = "unstable"
)

type LandlordRelationship string

const (
	RelationshipNew      LandlordRelationship = "new"
	RelationshipPositive LandlordRelationship = "positive"
	RelationshipNeutral  LandlordRelationship = "neutral"
	RelationshipStrained LandlordRelationship = "strained"
)

type TenantHistory string

const (
	HistoryFirstTime   TenantHistory = "first-time"
	HistoryExperienced TenantHistory = "experienced"
	HistoryVeteran     TenantHistory = "veteran"
)

type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

type MovingFlexibility string

const (
	MovingCommitted MovingFlexibility = "committed-to-stay"
	MovingWilling   MovingFlexibility = "willing-to-move"
	MovingEager     MovingFlexibility = "eager-to-move"
)

type RentPosition string

const (
	RentBelow              RentPosition = "below"
	RentAt                 RentPosition = "at"
	RentAbove              RentPosition = "above"
	RentSignificantlyAbove RentPosition = "significantly-above"
)

type RentTrend string

const (
	TrendIncreasing RentTrend = "increasing"
	TrendStable     RentTrend = "stable"
	TrendDecreasing RentTrend = "decreasing"
)

type SeasonalFactor string

const (
	SeasonPeak   SeasonalFactor = "peak"
	SeasonNormal SeasonalFactor = "normal"
	SeasonSlow   SeasonalFactor = "slow"
)

type PowerBalance string

const (
	PowerLandlordFavored PowerBalance = "landlord-favored"
	PowerBalanced        PowerBalance = "balanced"
	PowerTenantFavored   PowerBalance = "tenant-favored"
)

type LeaseStatus string

const (
	LeasePreApplication     LeaseStatus = "pre-application"
	LeaseApplicationPending LeaseStatus = "application-pending"
	LeaseActive             LeaseStatus = "active-lease"
	LeaseRenewalPeriod      LeaseStatus = "renewal-period"
)

type PrimaryGoal string

const (
	GoalLowerRent        PrimaryGoal = "lower-rent"
	GoalAvoidIncrease    PrimaryGoal = "avoid-increase"
	GoalBetterTerms      PrimaryGoal = "better-terms"
	GoalLeaseFlexibility PrimaryGoal = "lease-flexibility"
)

type IntelligenceSource string

const (
	SourceDatasets  IntelligenceSource = "dataset"
	SourceSemantic  IntelligenceSource = "semantic"
	SourceSynthetic IntelligenceSource = "synthetic"
)

type UserContext struct {
	CurrentRent          float64              `json:"current_rent" validate:"gt=0"`
	Income               *float64             `json:"income,omitempty" validate:"omitempty,gte=0"`
	BudgetFlexibility    BudgetFlexibility    `json:"budget_flexibility" validate:"required,oneof=tight moderate flexible"`
	EmploymentStability  EmploymentStability  `json:"employment_stability" validate:"required,oneof=stable variable unstable"`
	LandlordRelationship LandlordRelationship `json:"landlord_relationship" validate:"required,oneof=new positive neutral strained"`
	TenantHistory        TenantHistory        `json:"tenant_history" validate:"required,oneof=first-time experienced veteran"`
	RiskTolerance        RiskTolerance        `json:"risk_tolerance" validate:"required,oneof=conservative moderate aggressive"`
	AlternativeOptions   int                  `json:"alternative_options" validate:"gte=0"`
	MovingFlexibility    MovingFlexibility    `json:"moving_flexibility" validate:"required,oneof=committed-to-stay willing-to-move eager-to-move"`
	CommunicationStyle   string               `json:"communication_style,omitempty" validate:"omitempty,oneof=formal friendly direct"`
	ConflictStyle        string               `json:"conflict_style,omitempty" validate:"omitempty,oneof=avoidant collaborative assertive"`
}

type RentRange struct {
	Min    float64 `json:"min" validate:"gte=0"`
	Max    float64 `json:"max" validate:"gte=0"`
	Median float64 `json:"median" validate:"gte=0"`
}

func (r RentRange) IsZero() bool { return r.Min == 0 && r.Max == 0 && r.Median == 0 }

type MarketContext struct {
	CurrentRentVsMarket RentPosition   `json:"current_rent_vs_market" validate:"required,oneof=below at above significantly-above"`
	LocalVacancyRate    float64        `json:"local_vacancy_rate" validate:"gte=0,lte=100"`
	RentTrend           RentTrend      `json:"rent_trend" validate:"required,oneof=increasing stable decreasing"`
	SeasonalFactor      SeasonalFactor `json:"seasonal_factor" validate:"required,oneof=peak normal slow"`
	MarketPowerBalance  PowerBalance   `json:"market_power_balance" validate:"required,oneof=landlord-favored balanced tenant-favored"`
	ComparableRange     RentRange      `json:"comparable_range"`
}

type SituationContext struct {
	LeaseStatus       LeaseStatus `json:"lease_status" validate:"required,oneof=pre-application application-pending active-lease renewal-period"`
	TimeUntilDecision int         `json:"time_until_decision" validate:"gte=0"`
	TargetReduction   float64     `json:"target_reduction" validate:"gte=0"`
	PrimaryGoal       PrimaryGoal `json:"primary_goal" validate:"required,oneof=lower-rent avoid-increase better-terms lease-flexibility"`
}

type ComparableProperty struct {
	Rent     float64 `json:"rent"`
	Type     string  `json:"type,omitempty"`
	Distance string  `json:"distance,omitempty"`
}

type MarketTrends struct {
	AvgRent         *float64     `json:"avg_rent,omitempty"`
	MedianRent      *float64     `json:"median_rent,omitempty"`
	RentGrowth      string       `json:"rent_growth,omitempty"`
	MarketCondition PowerBalance `json:"market_condition,omitempty"`
}

type LocationData struct {
	AreaDescription string `json:"area_description,omitempty"`
}

type MarketIntelligence struct {
	ComparableProperties []ComparableProperty `json:"comparable_properties"`
	MarketTrends         MarketTrends         `json:"market_trends"`
	LocationSpecificData LocationData         `json:"location_specific_data"`
	NegotiationEvidence  []string             `json:"negotiation_evidence"`
	Source               IntelligenceSource   `json:"source"`
}

// Empty reports whether the record carries neither comparables nor evidence.
func (m MarketIntelligence) Empty() bool {
	return len(m.ComparableProperties) == 0 && len(m.NegotiationEvidence) == 0
}

// ReferenceRent is the most specific average-rent figure known: average, then median.
func (m MarketIntelligence) ReferenceRent() (float64, bool) {
	if m.MarketTrends.AvgRent != nil && *m.MarketTrends.AvgRent > 0 {
		return *m.MarketTrends.AvgRent, true
	}
	if m.MarketTrends.MedianRent != nil && *m.MarketTrends.MedianRent > 0 {
		return *m.MarketTrends.MedianRent, true
	}
	return 0, false
}

type LeverageFactors struct {
	Market       int `json:"market"`
	Financial    int `json:"financial"`
	Relationship int `json:"relationship"`
	Timing       int `json:"timing"`
}

type LeverageScore struct {
	Total      float64         `json:"total"`
	Factors    LeverageFactors `json:"factors"`
	Strengths  []string        `json:"strengths"`
	Weaknesses []string        `json:"weaknesses"`
}

type Archetype string

const (
	ArchetypeAssertiveCollaborative Archetype = "assertive-collaborative"
	ArchetypeCollaborative          Archetype = "collaborative-approach"
	ArchetypeRelationshipBuilding   Archetype = "relationship-building"
	ArchetypeLeverageFocused        Archetype = "leverage-focused"
	ArchetypeStrategicPatience      Archetype = "strategic-patience"
)

type Strategy struct {
	Archetype   Archetype `json:"archetype"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Reasoning   string    `json:"reasoning"`
}

type ProbabilityBreakdown struct {
	MarketConditions     int `json:"market_conditions"`
	RelationshipStrength int `json:"relationship_strength"`
	TimingOptimality     int `json:"timing_optimality"`
	StrategyAlignment    int `json:"strategy_alignment"`
}

type ConfidenceInterval struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type SuccessProbability struct {
	Overall            int                  `json:"overall"`
	Breakdown          ProbabilityBreakdown `json:"breakdown"`
	ConfidenceInterval ConfidenceInterval   `json:"confidence_interval"`
}

type PhaseStatus string

const (
	PhaseActive   PhaseStatus = "active"
	PhaseUpcoming PhaseStatus = "upcoming"
)

type Phase struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Duration    string      `json:"duration"`
	Status      PhaseStatus `json:"status"`
}

type Timeline struct {
	EstimatedDuration string  `json:"estimated_duration"`
	Phases            []Phase `json:"phases"`
}

type ActionType string

const (
	ActionResearch    ActionType = "research"
	ActionDocument    ActionType = "document"
	ActionCommunicate ActionType = "communicate"
	ActionWait        ActionType = "wait"
	ActionAnalyze     ActionType = "analyze"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type ActionItem struct {
	Type        ActionType `json:"type"`
	Description string     `json:"description"`
	Automatable bool       `json:"automatable"`
	Priority    Priority   `json:"priority"`
}

type CommunicationTemplate struct {
	Subject     string `json:"subject,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneScript string `json:"phone_script,omitempty"`
}

type Step struct {
	ID           string                 `json:"id"`
	Order        int                    `json:"order"`
	PhaseID      string                 `json:"phase_id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Difficulty   string                 `json:"difficulty"`
	TimeEstimate string                 `json:"time_estimate"`
	ActionItems  []ActionItem           `json:"action_items"`
	Tips         []string               `json:"tips"`
	RiskFactors  []string               `json:"risk_factors"`
	Template     *CommunicationTemplate `json:"template,omitempty"`
}

type Guidance struct {
	CurrentRecommendations []string `json:"current_recommendations"`
	WarningFlags           []string `json:"warning_flags"`
	OpportunityAlerts      []string `json:"opportunity_alerts"`
	NextBestActions        []string `json:"next_best_actions"`
}

type AdaptationTrigger struct {
	Condition  string `json:"condition"`
	Adjustment string `json:"adjustment"`
}

// NegotiationRoom is the estimated dollar range of a plausible monthly reduction.
type NegotiationRoom struct {
	Low             float64 `json:"low"`
	High            float64 `json:"high"`
	SuggestedTarget float64 `json:"suggested_target_rent"`
	Basis           string  `json:"basis"`
}

type RoadmapRequest struct {
	User      *UserContext      `json:"user" validate:"required"`
	Market    *MarketContext    `json:"market" validate:"required"`
	Situation *SituationContext `json:"situation" validate:"required"`
	Location  string            `json:"location,omitempty"`
}

type Roadmap struct {
	Strategy           Strategy            `json:"strategy"`
	LeverageScore      LeverageScore       `json:"leverage_score"`
	SuccessProbability SuccessProbability  `json:"success_probability"`
	Timeline           Timeline            `json:"timeline"`
	Steps              []Step              `json:"steps"`
	Guidance           Guidance            `json:"guidance"`
	MarketContext      MarketContext       `json:"market_context"`
	MarketIntelligence *MarketIntelligence `json:"market_intelligence"`
	NegotiationRoom    NegotiationRoom     `json:"negotiation_room"`
	AdaptationTriggers []AdaptationTrigger `json:"adaptation_triggers"`
	Disclaimer         string              `json:"disclaimer"`
}
