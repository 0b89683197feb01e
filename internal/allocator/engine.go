package allocator

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/topher/seiri-portal-sub002/internal/pool"
)

// Engine reserves agents from the registry for allocation requests.
type Engine struct {
	registry *pool.Registry
	now      func() time.Time
}

// NewEngine creates an engine bound to a registry.
func NewEngine(registry *pool.Registry) *Engine {
	return &Engine{registry: registry, now: time.Now}
}

// Allocate fills the requested roles in strict order: primary, then each
// supporting slot, then each reviewer slot. Agents are claimed the moment
// they are selected, so one agent can never hold two roles in the same
// request. An unfillable primary role fails the whole call with
// ErrNoAgentAvailable and releases everything claimed so far; unfillable
// supporting and reviewer slots are dropped silently.
func (e *Engine) Allocate(req Request) (*Allocation, error) {
	if req.Roles.Primary == "" {
		return nil, fmt.Errorf("allocation request %s has no primary role", req.WorkItemID)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	var claimed []string

	primary, ok := e.claimBest(req.Roles.Primary, RolePrimary, req.Routing.PreferredDomain, req.Priority)
	if !ok {
		e.rollback(claimed)
		return nil, fmt.Errorf("primary role %s: %w", req.Roles.Primary, ErrNoAgentAvailable)
	}
	claimed = append(claimed, primary.ID)

	var supporting []AgentRef
	for _, typ := range req.Roles.Supporting {
		agent, ok := e.claimBest(typ, RoleSupporting, req.Routing.PreferredDomain, req.Priority)
		if !ok {
			slog.Debug("Supporting slot unfilled", "request_id", req.RequestID, "type", typ)
			continue
		}
		claimed = append(claimed, agent.ID)
		supporting = append(supporting, refOf(agent))
	}

	var reviewers []AgentRef
	for _, typ := range req.Roles.Reviewers {
		agent, ok := e.claimBest(typ, RoleReviewer, req.Routing.PreferredDomain, req.Priority)
		if !ok {
			slog.Debug("Reviewer slot unfilled", "request_id", req.RequestID, "type", typ)
			continue
		}
		claimed = append(claimed, agent.ID)
		reviewers = append(reviewers, refOf(agent))
	}

	allocatedAt := e.now()
	duration := estimateDuration(primary, len(supporting))
	alloc := &Allocation{
		RequestID:          req.RequestID,
		WorkItemID:         req.WorkItemID,
		ParentID:           req.ParentID,
		Primary:            refOf(primary),
		Supporting:         supporting,
		Reviewers:          reviewers,
		Strategy:           deriveStrategy(len(supporting), len(reviewers)),
		EstimatedDuration:  duration,
		AllocatedAt:        allocatedAt,
		ExpectedCompletion: allocatedAt.Add(duration),
	}
	slog.Debug("Agents reserved",
		"request_id", alloc.RequestID,
		"primary", alloc.Primary.ID,
		"supporting", len(supporting),
		"reviewers", len(reviewers),
		"strategy", alloc.Strategy)
	return alloc, nil
}

// ReleaseAll returns every agent referenced by the allocation to AVAILABLE.
func (e *Engine) ReleaseAll(alloc *Allocation) {
	for _, id := range alloc.AgentIDs() {
		if !e.registry.Release(id) {
			slog.Warn("Release skipped, agent not busy", "agent_id", id, "request_id", alloc.RequestID)
		}
	}
}

// claimBest finds and reserves the best eligible agent of a type. The
// preferred domain's bucket is searched first, then every other domain in
// lexicographic order; the first bucket with an eligible agent decides.
// Within a bucket the highest score wins and the first-seen candidate
// takes exact ties. A claim can still lose a race with a concurrent
// request; the next candidate in score order is tried, and a fully
// contended bucket falls through to the next domain.
func (e *Engine) claimBest(typ pool.AgentType, role Role, preferred string, priority Priority) (pool.Agent, bool) {
	for _, domain := range e.searchOrder(preferred) {
		candidates := eligibleOnly(e.registry.ListByDomainAndType(domain, typ))
		if len(candidates) == 0 {
			continue
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return Score(candidates[i], role, priority) > Score(candidates[j], role, priority)
		})
		for _, c := range candidates {
			if e.registry.Claim(c.ID) {
				return c, true
			}
		}
	}
	return pool.Agent{}, false
}

func (e *Engine) searchOrder(preferred string) []string {
	domains := e.registry.Domains()
	if preferred == "" {
		return domains
	}
	order := make([]string, 0, len(domains)+1)
	order = append(order, preferred)
	for _, d := range domains {
		if d != preferred {
			order = append(order, d)
		}
	}
	return order
}

func (e *Engine) rollback(claimed []string) {
	for _, id := range claimed {
		e.registry.Release(id)
	}
}

func eligibleOnly(agents []pool.Agent) []pool.Agent {
	var out []pool.Agent
	for _, a := range agents {
		if a.Eligible() {
			out = append(out, a)
		}
	}
	return out
}

// Score rates a candidate for a role. Quality carries the most weight,
// spare capacity and task history add smaller boosts, and collaboration
// rating counts only for non-primary roles where teamwork matters more
// than leading.
func Score(a pool.Agent, role Role, priority Priority) float64 {
	score := a.Performance.AvgQualityScore * 0.4
	load := float64(a.Availability.CurrentTaskCount) / float64(a.Availability.MaxConcurrentTasks)
	score += (1 - load) * 20
	if role != RolePrimary {
		score += a.Performance.CollaborationRating * 0.2
	}
	score += priorityBoost(priority)
	score += math.Min(float64(a.Performance.TasksCompleted)/10, 10)
	return score
}

func priorityBoost(p Priority) float64 {
	switch p {
	case PriorityUrgent:
		return 10
	case PriorityHigh:
		return 5
	}
	return 0
}

func deriveStrategy(supporting, reviewers int) Strategy {
	switch {
	case supporting == 0 && reviewers == 0:
		return StrategySolo
	case supporting > 0 && reviewers == 0:
		return StrategyCollaborative
	case supporting == 0 && reviewers > 0:
		return StrategyReviewed
	default:
		return StrategyFull
	}
}

// estimateDuration scales the primary agent's average completion time by
// coordination overhead (10% per supporting agent) and by a quality factor
// that doubles the estimate for a hypothetical zero-quality agent. Rounded
// to the nearest minute.
func estimateDuration(primary pool.Agent, supportingCount int) time.Duration {
	minutes := primary.Performance.AvgCompletionMinutes *
		(1 + 0.1*float64(supportingCount)) *
		(2 - primary.Performance.AvgQualityScore/100)
	return time.Duration(math.Round(minutes)) * time.Minute
}

func refOf(a pool.Agent) AgentRef {
	return AgentRef{ID: a.ID, Name: a.Name, Type: a.Type, Domain: a.Domain}
}
