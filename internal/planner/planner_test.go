package planner

import (
	"testing"
	"time"

	"github.com/topher/seiri-portal-sub002/internal/raci"
)

func TestStrategyTypeDecision(t *testing.T) {
	p := NewPlanner()
	cases := []struct {
		name     string
		decision raci.RoutingDecision
		ctx      Context
		want     StrategyType
	}{
		{
			name:     "single domain low complexity",
			decision: raci.RoutingDecision{PrimaryDomain: "product"},
			ctx:      Context{Complexity: ComplexityLow},
			want:     StrategyParallel,
		},
		{
			name:     "cross domain",
			decision: raci.RoutingDecision{PrimaryDomain: "product", SupportingDomains: []string{"marketing"}},
			ctx:      Context{Complexity: ComplexityMedium, CrossDomain: true},
			want:     StrategySequential,
		},
		{
			name: "many involved domains",
			decision: raci.RoutingDecision{
				PrimaryDomain:     "product",
				SupportingDomains: []string{"marketing", "development"},
				ConsultedDomains:  []string{"strategy", "sales"},
			},
			ctx:  Context{Complexity: ComplexityLow},
			want: StrategyHybrid,
		},
		{
			name:     "high complexity alone forces hybrid",
			decision: raci.RoutingDecision{PrimaryDomain: "product"},
			ctx:      Context{Complexity: ComplexityHigh},
			want:     StrategyHybrid,
		},
	}
	for _, tc := range cases {
		strategy, _ := p.Plan(tc.decision, tc.ctx)
		if strategy.Type != tc.want {
			t.Errorf("%s: strategy = %s, want %s", tc.name, strategy.Type, tc.want)
		}
	}
}

func TestStrategyFixedStructure(t *testing.T) {
	p := NewPlanner()
	strategy, _ := p.Plan(raci.RoutingDecision{PrimaryDomain: "product"}, Context{})

	if len(strategy.CoordinationPoints) != 3 {
		t.Fatalf("expected 3 coordination points, got %d", len(strategy.CoordinationPoints))
	}
	names := []string{"initiation-sync", "execution-handoff", "review"}
	for i, want := range names {
		if strategy.CoordinationPoints[i].Name != want {
			t.Fatalf("coordination point %d = %q, want %q", i, strategy.CoordinationPoints[i].Name, want)
		}
	}

	if len(strategy.ReviewGates) != 2 {
		t.Fatalf("expected 2 review gates, got %d", len(strategy.ReviewGates))
	}
	if strategy.ReviewGates[0].Threshold != 0.8 || strategy.ReviewGates[1].Threshold != 0.9 {
		t.Fatalf("gate thresholds: %+v", strategy.ReviewGates)
	}
	for _, g := range strategy.ReviewGates {
		if g.OnFailure != ActionEscalate {
			t.Fatalf("gate %s must escalate on failure, got %q", g.Name, g.OnFailure)
		}
	}

	cr := strategy.ConflictResolution
	if cr.DecisionMaker != DeciderAccountable || cr.VotingThreshold != 0.6 || cr.Timeout != 48*time.Hour || cr.Fallback != FallbackCoordinator {
		t.Fatalf("conflict policy constants: %+v", cr)
	}
}

func TestCoreDurationScaling(t *testing.T) {
	cases := []struct {
		ctx  Context
		want time.Duration
	}{
		{Context{Complexity: ComplexityLow}, 60 * time.Minute},
		{Context{Complexity: ComplexityMedium}, 90 * time.Minute},
		{Context{Complexity: ComplexityHigh}, 120 * time.Minute},
		{Context{Complexity: ComplexityLow, CrossDomain: true}, 78 * time.Minute},
		{Context{Complexity: ComplexityMedium, CrossDomain: true}, 117 * time.Minute},
		{Context{Complexity: ComplexityHigh, CrossDomain: true}, 156 * time.Minute},
		{Context{}, 60 * time.Minute}, // unknown complexity plans like LOW
	}
	for _, tc := range cases {
		if got := coreDuration(tc.ctx); got != tc.want {
			t.Errorf("coreDuration(%+v) = %v, want %v", tc.ctx, got, tc.want)
		}
	}
}

func TestExecutionPlanShape(t *testing.T) {
	p := NewPlanner()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return start }

	_, plan := p.Plan(raci.RoutingDecision{PrimaryDomain: "development"}, Context{Complexity: ComplexityMedium, CrossDomain: true})

	if len(plan.Phases) != 4 {
		t.Fatalf("expected 4 phases, got %d", len(plan.Phases))
	}
	wantNames := []string{PhaseInitiation, PhaseCoreExecution, PhaseReview, PhaseFinalization}
	wantDurations := []time.Duration{30 * time.Minute, 117 * time.Minute, 45 * time.Minute, 15 * time.Minute}
	for i := range wantNames {
		ph := plan.Phases[i]
		if ph.Name != wantNames[i] || ph.Duration != wantDurations[i] || ph.Sequence != i+1 {
			t.Fatalf("phase %d: %+v", i, ph)
		}
	}

	if len(plan.Dependencies) != 3 {
		t.Fatalf("expected 3 dependencies, got %d", len(plan.Dependencies))
	}
	for i, d := range plan.Dependencies {
		if d.Type != DependencyBlocking {
			t.Fatalf("dependency %d not blocking: %+v", i, d)
		}
		if d.From != wantNames[i] || d.To != wantNames[i+1] {
			t.Fatalf("dependency %d should chain consecutive phases: %+v", i, d)
		}
	}

	if len(plan.Milestones) != 3 {
		t.Fatalf("expected 3 milestones, got %d", len(plan.Milestones))
	}
	wantDue := []time.Time{
		start.Add(30 * time.Minute),
		start.Add(147 * time.Minute),
		start.Add(192 * time.Minute),
	}
	for i, m := range plan.Milestones {
		if !m.Due.Equal(wantDue[i]) {
			t.Fatalf("milestone %d due %v, want %v", i, m.Due, wantDue[i])
		}
		if i > 0 && !plan.Milestones[i-1].Due.Before(m.Due) {
			t.Fatal("milestones must be strictly increasing")
		}
	}

	if plan.TotalDuration != 207*time.Minute {
		t.Fatalf("total duration %v, want 207m", plan.TotalDuration)
	}
}
