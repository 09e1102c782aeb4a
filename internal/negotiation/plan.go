package negotiation

import (
	"fmt"
	"sort"
	"strings"
)

type phaseTemplate struct {
	id          string
	name        string
	description string
}

var phaseTemplates = map[Archetype][]phaseTemplate{
	ArchetypeAssertiveCollaborative: {
		{"foundation", "Build the Evidence Case", "Assemble comparable rents and your record as a tenant into a short, factual case."},
		{"engagement", "Make the Ask", "Present a specific number backed by evidence and invite the landlord to respond."},
		{"resolution", "Close the Agreement", "Settle on the new rate and get the change in writing."},
	},
	ArchetypeCollaborative: {
		{"foundation", "Frame the Shared Problem", "Gather evidence that the market is softening and frame renewal as good for both sides."},
		{"engagement", "Joint Conversation", "Meet or call to explore a rate that keeps the unit occupied and fairly priced."},
		{"resolution", "Agree on a Fair Rate", "Confirm the agreed rate and any added terms in a signed lease addendum."},
	},
	ArchetypeRelationshipBuilding: {
		{"foundation", "Reset the Relationship", "Resolve open issues and re-establish friendly, reliable communication."},
		{"engagement", "Demonstrate Tenant Value", "Show the landlord what a dependable long-term tenant is worth to them."},
		{"resolution", "Request Modest Concessions", "Ask for a small reduction or non-rent concessions once goodwill is restored."},
	},
	ArchetypeLeverageFocused: {
		{"foundation", "Secure Alternatives", "Line up concrete alternative housing so your walk-away option is real."},
		{"engagement", "Present Your Position", "State your number, your alternatives and a response deadline."},
		{"resolution", "Decide and Commit", "Accept the best offer or execute your alternative on the deadline."},
	},
	ArchetypeStrategicPatience: {
		{"foundation", "Quiet Preparation", "Collect market evidence and strengthen your options without signaling intent."},
		{"engagement", "Monitor and Time", "Watch vacancy and listing prices for the moment your leverage peaks."},
		{"resolution", "Make the Request", "Ask at the best moment with a well-supported number."},
	},
}

// planFacts are the market figures the plan wording draws on.
type planFacts struct {
	evidence   string
	avgRent    float64
	hasAvg     bool
	compLow    float64
	compHigh   float64
	compMedian float64
	hasComps   bool
}

func factsFrom(market MarketContext, intel *MarketIntelligence) planFacts {
	var f planFacts
	if intel != nil {
		if len(intel.NegotiationEvidence) > 0 {
			f.evidence = intel.NegotiationEvidence[0]
		}
		f.avgRent, f.hasAvg = intel.ReferenceRent()
		if r, ok := comparableRange(intel.ComparableProperties); ok {
			f.compLow, f.compHigh, f.compMedian, f.hasComps = r.Min, r.Max, r.Median, true
		}
		return f
	}
	if !market.ComparableRange.IsZero() {
		r := market.ComparableRange
		f.compLow, f.compHigh, f.compMedian, f.hasComps = r.Min, r.Max, r.Median, true
	}
	return f
}

func comparableRange(comps []ComparableProperty) (RentRange, bool) {
	rents := make([]float64, 0, len(comps))
	for _, c := range comps {
		if c.Rent > 0 {
			rents = append(rents, c.Rent)
		}
	}
	if len(rents) == 0 {
		return RentRange{}, false
	}
	sort.Float64s(rents)
	median := rents[len(rents)/2]
	if len(rents)%2 == 0 {
		median = roundCents((rents[len(rents)/2-1] + rents[len(rents)/2]) / 2)
	}
	return RentRange{Min: rents[0], Max: rents[len(rents)-1], Median: median}, true
}

// BuildTimeline selects the archetype's phases and fills in market evidence when known.
func BuildTimeline(strategy Strategy, market MarketContext, situation SituationContext, intel *MarketIntelligence) Timeline {
	facts := factsFrom(market, intel)
	short := situation.TimeUntilDecision < shortTimelineDays
	durations := []string{"1 week", "1-2 weeks", "1-3 weeks"}
	estimated := "3-6 weeks"
	if short {
		durations = []string{"2-3 days", "3-5 days", "2-4 days"}
		estimated = "1-2 weeks"
	}

	templates := phaseTemplates[strategy.Archetype]
	phases := make([]Phase, 0, len(templates))
	for i, t := range templates {
		desc := t.description
		switch {
		case i == 0 && facts.evidence != "":
			desc += " Anchor it on: " + facts.evidence + "."
		case i == len(templates)-1 && facts.hasAvg:
			desc += fmt.Sprintf(" Use the area average of %s as your reference point.", formatUSD(facts.avgRent))
		}
		status := PhaseUpcoming
		if i == 0 {
			status = PhaseActive
		}
		phases = append(phases, Phase{ID: t.id, Name: t.name, Description: desc, Duration: durations[i], Status: status})
	}
	return Timeline{EstimatedDuration: estimated, Phases: phases}
}

type stepProfile struct {
	openingTitle string
	openingLine  string
	closingLine  string
	difficulty   string
	tips         []string
	risks        []string
	responseDays int
}

var stepProfiles = map[Archetype]stepProfile{
	ArchetypeAssertiveCollaborative: {
		openingTitle: "Send a confident, evidence-backed request",
		openingLine:  "Based on what comparable units are renting for, I would like to discuss adjusting my rent.",
		closingLine:  "I think this keeps things fair for both of us and I am happy to sign a renewal promptly.",
		difficulty:   "moderate",
		tips:         []string{"State one specific number rather than a range", "Offer something of value in return, such as a longer lease term"},
		risks:        []string{"Overstating your evidence can cost credibility"},
		responseDays: 5,
	},
	ArchetypeCollaborative: {
		openingTitle: "Invite a joint conversation about the rate",
		openingLine:  "With rents in the area easing, I wanted to talk about a renewal rate that works for both of us.",
		closingLine:  "I would love to find an arrangement that keeps the unit occupied and fairly priced.",
		difficulty:   "easy",
		tips:         []string{"Ask open questions about the landlord's priorities", "Acknowledge the landlord's costs before proposing a number"},
		risks:        []string{"A purely friendly framing can be met with a token discount"},
		responseDays: 7,
	},
	ArchetypeRelationshipBuilding: {
		openingTitle: "Open a goodwill conversation",
		openingLine:  "I want to make sure any open issues between us are resolved and that we are on good terms.",
		closingLine:  "Once we are aligned, I would appreciate your consideration of a modest adjustment.",
		difficulty:   "moderate",
		tips:         []string{"Lead with appreciation and resolve outstanding issues first", "Keep the first conversation free of demands"},
		risks:        []string{"Raising price too early may reopen past conflict"},
		responseDays: 10,
	},
	ArchetypeLeverageFocused: {
		openingTitle: "Present your number, alternatives and deadline",
		openingLine:  "I have been reviewing my housing options and wanted to give you the chance to keep me as a tenant.",
		closingLine:  "I need to make a decision soon, so I would appreciate a response within the week.",
		difficulty:   "hard",
		tips:         []string{"Only mention alternatives you are genuinely prepared to take", "Put your deadline in writing"},
		risks:        []string{"The landlord may call your bluff", "Relationship damage if the tone reads as a threat"},
		responseDays: 5,
	},
	ArchetypeStrategicPatience: {
		openingTitle: "Make a well-timed request",
		openingLine:  "I have valued living here and wanted to talk about my rent ahead of the renewal.",
		closingLine:  "I am hoping we can agree on something that lets me stay long term.",
		difficulty:   "moderate",
		tips:         []string{"Track new listings weekly so you know when the market softens", "Ask when vacancy in the building or area is visibly rising"},
		risks:        []string{"Waiting too long can push you past the renewal deadline"},
		responseDays: 7,
	},
}

// BuildSteps produces the ordered, actionable steps for the chosen strategy.
func BuildSteps(strategy Strategy, user UserContext, market MarketContext, situation SituationContext, intel *MarketIntelligence, room NegotiationRoom) []Step {
	facts := factsFrom(market, intel)
	profile := stepProfiles[strategy.Archetype]
	phases := phaseTemplates[strategy.Archetype]

	research := Step{
		PhaseID:      phases[0].id,
		Title:        "Research comparable rents",
		Description:  "Collect current asking rents for units similar to yours in size, condition and location.",
		Difficulty:   "easy",
		TimeEstimate: "1-2 hours",
		ActionItems: []ActionItem{
			{Type: ActionResearch, Description: "Pull 3-5 active listings within a mile with the same bedroom count", Automatable: true, Priority: PriorityHigh},
			{Type: ActionAnalyze, Description: "Compare price per month and amenities against your unit", Automatable: true, Priority: PriorityMedium},
		},
		Tips:        []string{"Screenshot listings with dates; they disappear once rented"},
		RiskFactors: []string{"Listings in better condition than your unit weaken the comparison"},
	}
	if facts.hasAvg {
		research.Description += fmt.Sprintf(" Area data puts average rent at %s.", formatUSD(facts.avgRent))
	}

	document := Step{
		PhaseID:      phases[0].id,
		Title:        "Document your value as a tenant",
		Description:  "Summarize what makes you a low-risk tenant worth keeping.",
		Difficulty:   "easy",
		TimeEstimate: "30-60 minutes",
		ActionItems: []ActionItem{
			{Type: ActionDocument, Description: "List on-time payment history and lease tenure", Automatable: false, Priority: PriorityHigh},
			{Type: ActionDocument, Description: "Note any repairs or improvements you handled yourself", Automatable: false, Priority: PriorityLow},
		},
		Tips:        []string{"Landlords weigh turnover costs of roughly one to two months' rent"},
		RiskFactors: []string{},
	}
	if strategy.Archetype == ArchetypeLeverageFocused || user.AlternativeOptions > 0 {
		document.ActionItems = append(document.ActionItems, ActionItem{
			Type: ActionDocument, Description: "Record rent, move-in date and terms for each alternative you would accept", Automatable: false, Priority: PriorityMedium,
		})
	}
	if strategy.Archetype == ArchetypeRelationshipBuilding {
		document.ActionItems = append(document.ActionItems, ActionItem{
			Type: ActionDocument, Description: "Write down outstanding issues and how each could be resolved", Automatable: false, Priority: PriorityHigh,
		})
	}

	tips := append([]string{}, profile.tips...)
	switch user.ConflictStyle {
	case "avoidant":
		tips = append(tips, "Put the request in writing so you can take time before answering pushback")
	case "assertive":
		tips = append(tips, "Let the landlord make the first counter before you concede anything")
	}
	communicate := Step{
		PhaseID:      phases[1].id,
		Title:        profile.openingTitle,
		Description:  strategy.Description,
		Difficulty:   profile.difficulty,
		TimeEstimate: "1 hour",
		ActionItems: []ActionItem{
			{Type: ActionCommunicate, Description: "Send the email below or use the phone script", Automatable: false, Priority: PriorityHigh},
		},
		Tips:        tips,
		RiskFactors: append([]string{}, profile.risks...),
		Template:    buildTemplate(profile, user, situation, facts, room),
	}
	if facts.evidence != "" {
		communicate.Description += " Cite: " + facts.evidence + "."
	}

	respondDays := min(profile.responseDays, max(situation.TimeUntilDecision/2, 1))
	wait := Step{
		PhaseID:      phases[1].id,
		Title:        "Give the landlord time to respond",
		Description:  fmt.Sprintf("Allow about %d day(s) for a reply before following up.", respondDays),
		Difficulty:   "easy",
		TimeEstimate: fmt.Sprintf("%d day(s)", respondDays),
		ActionItems: []ActionItem{
			{Type: ActionWait, Description: "Set a reminder for your follow-up date", Automatable: true, Priority: PriorityMedium},
			{Type: ActionCommunicate, Description: "Send a short, polite follow-up if there is no reply", Automatable: false, Priority: PriorityMedium},
		},
		Tips:        []string{"Silence is not a no; landlords often check numbers before replying"},
		RiskFactors: []string{"Following up too aggressively can sour the conversation"},
	}

	evaluate := Step{
		PhaseID:      phases[2].id,
		Title:        "Evaluate the response and close",
		Description:  fmt.Sprintf("Compare any counteroffer against your target of %s and your alternatives.", formatUSD(room.SuggestedTarget)),
		Difficulty:   "moderate",
		TimeEstimate: "1-2 hours",
		ActionItems: []ActionItem{
			{Type: ActionAnalyze, Description: "Compute the annual savings of each offer", Automatable: true, Priority: PriorityHigh},
			{Type: ActionDocument, Description: "Get the agreed rent and terms in a signed addendum", Automatable: false, Priority: PriorityHigh},
		},
		Tips:        []string{"Non-rent concessions (parking, upgrades, flexible term) can bridge a gap"},
		RiskFactors: []string{"Verbal agreements are hard to enforce"},
	}

	steps := []Step{research, document, communicate, wait, evaluate}
	for i := range steps {
		steps[i].Order = i + 1
		steps[i].ID = fmt.Sprintf("step-%d", i+1)
	}
	return steps
}

func buildTemplate(profile stepProfile, user UserContext, situation SituationContext, facts planFacts, room NegotiationRoom) *CommunicationTemplate {
	greeting, signoff := "Hi [Landlord name],", "Thanks so much,"
	switch user.CommunicationStyle {
	case "formal":
		greeting, signoff = "Dear [Landlord name],", "Sincerely,"
	case "direct":
		greeting, signoff = "Hello [Landlord name],", "Best,"
	}

	evidenceLine := "From what I have seen, similar units nearby are listed for less than I currently pay."
	if facts.hasComps {
		evidenceLine = fmt.Sprintf("Comparable units nearby are renting for %s-%s (median %s), while I currently pay %s.",
			formatUSD(facts.compLow), formatUSD(facts.compHigh), formatUSD(facts.compMedian), formatUSD(user.CurrentRent))
	}

	ask := proposal(user, situation, room)
	subject := "Discussing my rent"
	if situation.LeaseStatus == LeaseRenewalPeriod {
		subject = "Lease renewal discussion"
	}

	var email strings.Builder
	fmt.Fprintf(&email, "%s\n\n", greeting)
	fmt.Fprintf(&email, "%s\n\n", profile.openingLine)
	fmt.Fprintf(&email, "%s\n\n", evidenceLine)
	fmt.Fprintf(&email, "%s %s\n\n", ask, profile.closingLine)
	fmt.Fprintf(&email, "%s\n[Your name]", signoff)

	phone := fmt.Sprintf("Hi, this is [Your name] from [unit]. Do you have a few minutes to talk about my lease? %s %s %s Would you be open to that?",
		profile.openingLine, evidenceLine, ask)

	return &CommunicationTemplate{Subject: subject, Email: email.String(), PhoneScript: phone}
}

func proposal(user UserContext, situation SituationContext, room NegotiationRoom) string {
	switch situation.PrimaryGoal {
	case GoalAvoidIncrease:
		return fmt.Sprintf("I would like to ask that my rent stay at %s for the next term.", formatUSD(user.CurrentRent))
	case GoalBetterTerms:
		return fmt.Sprintf("I would like to discuss improved lease terms at a monthly rent of %s.", formatUSD(room.SuggestedTarget))
	case GoalLeaseFlexibility:
		return "I would like to discuss a more flexible arrangement, such as a shorter term or an early-termination option."
	default:
		return fmt.Sprintf("I would like to propose a monthly rent of %s.", formatUSD(room.SuggestedTarget))
	}
}
