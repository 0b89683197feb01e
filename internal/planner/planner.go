// Package planner turns a routing decision into a coordination strategy and
// a phased execution plan with dependencies and milestones.
package planner

import (
	"math"
	"time"

	"github.com/topher/seiri-portal-sub002/internal/raci"
)

// Complexity grades how demanding the work item is.
type Complexity string

const (
	ComplexityLow    Complexity = "LOW"
	ComplexityMedium Complexity = "MEDIUM"
	ComplexityHigh   Complexity = "HIGH"
)

// StrategyType tags how involved domains synchronize.
type StrategyType string

const (
	StrategySequential StrategyType = "SEQUENTIAL"
	StrategyParallel   StrategyType = "PARALLEL"
	StrategyHybrid     StrategyType = "HYBRID"
)

// Fixed phase names of every execution plan.
const (
	PhaseInitiation    = "Initiation"
	PhaseCoreExecution = "Core Execution"
	PhaseReview        = "Review"
	PhaseFinalization  = "Finalization"
)

// Policy tags used in strategies and gates.
const (
	ActionEscalate        = "ESCALATE"
	FallbackCoordinator   = "ESCALATE_TO_COORDINATOR"
	DeciderAccountable    = "ACCOUNTABLE_DOMAIN"
	DependencyBlocking    = "BLOCKING"
	conflictVoteThreshold = 0.6
	conflictTimeout       = 48 * time.Hour
)

// Context carries the planning inputs that do not come from routing.
type Context struct {
	Complexity  Complexity `json:"complexity"`
	CrossDomain bool       `json:"cross_domain"`
}

// CoordinationPoint is a named synchronization moment between domains.
type CoordinationPoint struct {
	Name        string `json:"name"`
	Phase       string `json:"phase"`
	Description string `json:"description"`
}

// ReviewGate is a quality checkpoint; work below the threshold escalates.
type ReviewGate struct {
	Name      string  `json:"name"`
	Threshold float64 `json:"threshold"` // fraction of the quality bar, 0-1
	OnFailure string  `json:"on_failure"`
}

// ConflictPolicy is the fixed dispute-resolution rule between domains.
type ConflictPolicy struct {
	DecisionMaker   string        `json:"decision_maker"`
	VotingThreshold float64       `json:"voting_threshold"`
	Timeout         time.Duration `json:"timeout"`
	Fallback        string        `json:"fallback"`
}

// CoordinationStrategy describes how the involved domains work together.
// Immutable once generated.
type CoordinationStrategy struct {
	Type               StrategyType        `json:"type"`
	CoordinationPoints []CoordinationPoint `json:"coordination_points"`
	ReviewGates        []ReviewGate        `json:"review_gates"`
	ConflictResolution ConflictPolicy      `json:"conflict_resolution"`
}

// Phase is one stage of the execution plan.
type Phase struct {
	Name     string        `json:"name"`
	Sequence int           `json:"sequence"`
	Duration time.Duration `json:"duration"`
}

// Dependency orders two phases; all plan dependencies are blocking.
type Dependency struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// Milestone is a dated checkpoint derived from cumulative phase durations.
type Milestone struct {
	Name string    `json:"name"`
	Due  time.Time `json:"due"`
}

// ExecutionPlan is the phased schedule for one work item. Immutable once
// generated.
type ExecutionPlan struct {
	Phases        []Phase       `json:"phases"`
	Dependencies  []Dependency  `json:"dependencies"`
	Milestones    []Milestone   `json:"milestones"`
	TotalDuration time.Duration `json:"total_duration"`
}

// Planner derives strategies and plans. Safe for concurrent use.
type Planner struct {
	now func() time.Time
}

// NewPlanner creates a planner using the wall clock.
func NewPlanner() *Planner {
	return &Planner{now: time.Now}
}

// Plan builds the coordination strategy and execution plan for a routing
// decision. Strategy type: HYBRID when more than three domains are actively
// involved or complexity is HIGH, otherwise SEQUENTIAL for cross-domain
// work and PARALLEL for work inside one domain.
func (p *Planner) Plan(decision raci.RoutingDecision, ctx Context) (CoordinationStrategy, ExecutionPlan) {
	involved := 1 + len(decision.SupportingDomains) + len(decision.ConsultedDomains)

	strategyType := StrategyParallel
	switch {
	case involved > 3 || ctx.Complexity == ComplexityHigh:
		strategyType = StrategyHybrid
	case ctx.CrossDomain:
		strategyType = StrategySequential
	}

	strategy := CoordinationStrategy{
		Type: strategyType,
		CoordinationPoints: []CoordinationPoint{
			{Name: "initiation-sync", Phase: PhaseInitiation, Description: "Align involved domains on scope and roles"},
			{Name: "execution-handoff", Phase: PhaseCoreExecution, Description: "Hand off interim results between primary and supporting domains"},
			{Name: "review", Phase: PhaseReview, Description: "Joint review of deliverables before finalization"},
		},
		ReviewGates: []ReviewGate{
			{Name: "mid-review", Threshold: 0.8, OnFailure: ActionEscalate},
			{Name: "final-review", Threshold: 0.9, OnFailure: ActionEscalate},
		},
		ConflictResolution: ConflictPolicy{
			DecisionMaker:   DeciderAccountable,
			VotingThreshold: conflictVoteThreshold,
			Timeout:         conflictTimeout,
			Fallback:        FallbackCoordinator,
		},
	}

	return strategy, p.buildPlan(ctx)
}

func (p *Planner) buildPlan(ctx Context) ExecutionPlan {
	phases := []Phase{
		{Name: PhaseInitiation, Sequence: 1, Duration: 30 * time.Minute},
		{Name: PhaseCoreExecution, Sequence: 2, Duration: coreDuration(ctx)},
		{Name: PhaseReview, Sequence: 3, Duration: 45 * time.Minute},
		{Name: PhaseFinalization, Sequence: 4, Duration: 15 * time.Minute},
	}

	deps := make([]Dependency, 0, len(phases)-1)
	for i := 1; i < len(phases); i++ {
		deps = append(deps, Dependency{From: phases[i-1].Name, To: phases[i].Name, Type: DependencyBlocking})
	}

	start := p.now()
	total := time.Duration(0)
	cumulative := make([]time.Time, len(phases))
	for i, ph := range phases {
		total += ph.Duration
		cumulative[i] = start.Add(total)
	}

	milestones := []Milestone{
		{Name: "Kickoff complete", Due: cumulative[0]},
		{Name: "Core work complete", Due: cumulative[1]},
		{Name: "Ready for delivery", Due: cumulative[2]},
	}

	return ExecutionPlan{
		Phases:        phases,
		Dependencies:  deps,
		Milestones:    milestones,
		TotalDuration: total,
	}
}

// coreDuration scales the 60-minute core phase by complexity, with a 1.3x
// surcharge for cross-domain coordination. Unknown complexity plans like
// LOW.
func coreDuration(ctx Context) time.Duration {
	mult := 1.0
	switch ctx.Complexity {
	case ComplexityMedium:
		mult = 1.5
	case ComplexityHigh:
		mult = 2
	}
	minutes := 60 * mult
	if ctx.CrossDomain {
		minutes *= 1.3
	}
	return time.Duration(math.Round(minutes)) * time.Minute
}
