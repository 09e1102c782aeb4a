package negotiation

import (
	"fmt"
	"strings"
	"testing"
)

func TestBuildTimelineShape(t *testing.T) {
	for a := range phaseTemplates {
		tl := BuildTimeline(newStrategy(a, ""), neutralMarket(), baseSituation(), nil)
		if tl.EstimatedDuration != "3-6 weeks" {
			t.Fatalf("%s: unexpected duration %q", a, tl.EstimatedDuration)
		}
		if len(tl.Phases) != 3 || tl.Phases[0].Status != PhaseActive || tl.Phases[0].ID != "foundation" {
			t.Fatalf("%s: unexpected phases %+v", a, tl.Phases)
		}
		for _, p := range tl.Phases[1:] {
			if p.Status != PhaseUpcoming {
				t.Fatalf("%s: expected upcoming phase, got %+v", a, p)
			}
		}
	}

	s := baseSituation()
	s.TimeUntilDecision = 10
	if tl := BuildTimeline(newStrategy(ArchetypeStrategicPatience, ""), neutralMarket(), s, nil); tl.EstimatedDuration != "1-2 weeks" {
		t.Fatalf("expected short duration, got %q", tl.EstimatedDuration)
	}
}

func TestBuildTimelineUsesEvidence(t *testing.T) {
	intel := SyntheticIntelligence(2000)
	intel.NegotiationEvidence = []string{"Metro median rent is $1,700"}
	tl := BuildTimeline(newStrategy(ArchetypeCollaborative, ""), neutralMarket(), baseSituation(), &intel)
	if !strings.Contains(tl.Phases[0].Description, "Metro median rent is $1,700") {
		t.Fatalf("expected evidence in first phase: %q", tl.Phases[0].Description)
	}
	if !strings.Contains(tl.Phases[2].Description, "$1,860") {
		t.Fatalf("expected average rent in last phase: %q", tl.Phases[2].Description)
	}

	generic := BuildTimeline(newStrategy(ArchetypeCollaborative, ""), neutralMarket(), baseSituation(), nil)
	if strings.Contains(generic.Phases[0].Description, "Anchor it on") {
		t.Fatal("expected generic wording without intelligence")
	}
}

func TestBuildStepsOrderAndTemplate(t *testing.T) {
	intel := SyntheticIntelligence(2000)
	room := NegotiationRoom{Low: 40, High: 100, SuggestedTarget: 1900}
	steps := BuildSteps(newStrategy(ArchetypeAssertiveCollaborative, ""), neutralUser(), neutralMarket(), baseSituation(), &intel, room)
	if len(steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(steps))
	}
	templates := 0
	for i, s := range steps {
		if s.Order != i+1 || s.ID != fmt.Sprintf("step-%d", i+1) {
			t.Fatalf("step %d misnumbered: %+v", i, s)
		}
		if len(s.ActionItems) == 0 || s.Tips == nil || s.RiskFactors == nil {
			t.Fatalf("step %d incomplete: %+v", i, s)
		}
		if s.Template != nil {
			templates++
		}
	}
	if templates != 1 {
		t.Fatalf("expected one template, got %d", templates)
	}
	tmpl := steps[2].Template
	if !strings.Contains(tmpl.Email, "$1,800-$2,100") || !strings.Contains(tmpl.Email, "$1,900") {
		t.Fatalf("expected comparable figures and target in email:\n%s", tmpl.Email)
	}
	if tmpl.Subject != "Lease renewal discussion" {
		t.Fatalf("unexpected subject %q", tmpl.Subject)
	}
	if steps[3].TimeEstimate != "5 day(s)" {
		t.Fatalf("unexpected wait estimate %q", steps[3].TimeEstimate)
	}
}

func TestBuildTemplateFollowsUserStyle(t *testing.T) {
	u := neutralUser()
	u.CommunicationStyle = "formal"
	s := baseSituation()
	s.PrimaryGoal = GoalAvoidIncrease
	s.LeaseStatus = LeaseActive
	steps := BuildSteps(newStrategy(ArchetypeStrategicPatience, ""), u, neutralMarket(), s, nil, NegotiationRoom{})
	tmpl := steps[2].Template
	if !strings.HasPrefix(tmpl.Email, "Dear [Landlord name],") || !strings.Contains(tmpl.Email, "Sincerely,") {
		t.Fatalf("expected formal email:\n%s", tmpl.Email)
	}
	if !strings.Contains(tmpl.Email, "stay at $2,000") {
		t.Fatalf("expected avoid-increase proposal:\n%s", tmpl.Email)
	}
	if !strings.Contains(tmpl.Email, "similar units nearby are listed for less") {
		t.Fatalf("expected generic evidence line:\n%s", tmpl.Email)
	}
	if tmpl.Subject != "Discussing my rent" {
		t.Fatalf("unexpected subject %q", tmpl.Subject)
	}
}

func TestBuildStepsWaitFitsDeadline(t *testing.T) {
	s := baseSituation()
	s.TimeUntilDecision = 0
	steps := BuildSteps(newStrategy(ArchetypeRelationshipBuilding, ""), neutralUser(), neutralMarket(), s, nil, NegotiationRoom{})
	if steps[3].TimeEstimate != "1 day(s)" {
		t.Fatalf("expected one-day wait, got %q", steps[3].TimeEstimate)
	}
}

func TestComparableRange(t *testing.T) {
	r, ok := comparableRange([]ComparableProperty{{Rent: 1900}, {Rent: 0}, {Rent: 1700}, {Rent: 2100}, {Rent: 1800}})
	if !ok || r != (RentRange{Min: 1700, Max: 2100, Median: 1850}) {
		t.Fatalf("unexpected range %+v", r)
	}
	if _, ok := comparableRange(nil); ok {
		t.Fatal("expected no range for empty input")
	}
}
