// Package coordinator orchestrates allocation end to end: routing through
// the responsibility matrix, reserving agents, planning coordination, and
// owning the active/historical allocation ledger.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/topher/seiri-portal-sub002/internal/allocator"
	"github.com/topher/seiri-portal-sub002/internal/escalation"
	"github.com/topher/seiri-portal-sub002/internal/events"
	"github.com/topher/seiri-portal-sub002/internal/performance"
	"github.com/topher/seiri-portal-sub002/internal/planner"
	"github.com/topher/seiri-portal-sub002/internal/pool"
	"github.com/topher/seiri-portal-sub002/internal/raci"
	"github.com/topher/seiri-portal-sub002/internal/store"
	"github.com/topher/seiri-portal-sub002/internal/telemetry"
)

// ErrAllocationNotFound reports a completion for a request ID with no active
// allocation, including a second completion of an already-released one.
var ErrAllocationNotFound = errors.New("allocation not found")

// RouteRequest is the inbound contract of the core: one unit of work with
// its responsibility matrix and resourcing requirements.
type RouteRequest struct {
	WorkItemID  string               `json:"work_item_id"`
	ParentID    string               `json:"parent_id,omitempty"`
	Matrix      raci.Matrix          `json:"matrix"`
	Deliverable raci.DeliverableType `json:"deliverable,omitempty"`
	Roles       allocator.Roles      `json:"roles"`
	Priority    allocator.Priority   `json:"priority"`
	Deadline    *time.Time           `json:"deadline,omitempty"`
	Complexity  planner.Complexity   `json:"complexity,omitempty"`

	CollaborationNeeds []string `json:"collaboration_needs,omitempty"`
}

// WorkAssignment is everything the caller gets back for one routed request.
type WorkAssignment struct {
	Allocation *allocator.Allocation        `json:"allocation"`
	Routing    raci.RoutingDecision         `json:"routing"`
	Strategy   planner.CoordinationStrategy `json:"strategy"`
	Plan       planner.ExecutionPlan        `json:"plan"`
}

// PoolStatistics is a point-in-time summary of the pool and ledger.
type PoolStatistics struct {
	TotalAgents          int                      `json:"total_agents"`
	ByStatus             map[pool.AgentStatus]int `json:"by_status"`
	ByDomain             map[string]int           `json:"by_domain"`
	ActiveAllocations    int                      `json:"active_allocations"`
	CompletedAllocations int                      `json:"completed_allocations"`
}

// Options carries the optional side-effect sinks. All of them may be nil;
// the core never fails an operation because a sink does.
type Options struct {
	Store     *store.Store
	Publisher events.Publisher
	Notifier  escalation.Notifier
}

// Coordinator is the root of the coordination core. One instance owns one
// pool and its allocation ledger.
type Coordinator struct {
	registry    *pool.Registry
	engine      *allocator.Engine
	tracker     *performance.Tracker
	planner     *planner.Planner
	escalations *escalation.Manager
	store       *store.Store
	publisher   events.Publisher

	mu      sync.Mutex
	active  map[string]*allocator.Allocation
	history []*allocator.Allocation
}

// New creates a coordinator over an already-seeded registry.
func New(registry *pool.Registry, opts Options) *Coordinator {
	return &Coordinator{
		registry:    registry,
		engine:      allocator.NewEngine(registry),
		tracker:     performance.NewTracker(registry),
		planner:     planner.NewPlanner(),
		escalations: escalation.NewManager(opts.Notifier),
		store:       opts.Store,
		publisher:   opts.Publisher,
		active:      make(map[string]*allocator.Allocation),
	}
}

// RouteAndAllocate resolves routing for the work item, reserves agents, and
// builds the coordination strategy and execution plan. On success the
// allocation enters the active ledger; the caller releases it later through
// Complete. The only fatal failure is an unfillable primary role.
func (c *Coordinator) RouteAndAllocate(ctx context.Context, req RouteRequest) (*WorkAssignment, error) {
	if req.WorkItemID == "" {
		return nil, fmt.Errorf("route request has no work item ID")
	}
	decision := raci.Resolve(req.Matrix, req.Deliverable)

	allocReq := allocator.Request{
		RequestID:  uuid.NewString(),
		WorkItemID: req.WorkItemID,
		ParentID:   req.ParentID,
		Roles:      req.Roles,
		Priority:   req.Priority,
		Deadline:   req.Deadline,
		Routing: allocator.Routing{
			PreferredDomain:    decision.PrimaryDomain,
			DomainContext:      string(req.Deliverable),
			CollaborationNeeds: req.CollaborationNeeds,
		},
	}

	alloc, err := c.engine.Allocate(allocReq)
	if err != nil {
		telemetry.RecordAllocationFailure(ctx, string(req.Roles.Primary))
		c.publish(ctx, events.TypeAllocationFailed, allocReq.RequestID, map[string]any{
			"work_item_id": req.WorkItemID,
			"primary_role": req.Roles.Primary,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("allocate work item %s: %w", req.WorkItemID, err)
	}

	crossDomain := len(decision.SupportingDomains) > 0 || len(decision.ConsultedDomains) > 0
	strategy, plan := c.planner.Plan(decision, planner.Context{
		Complexity:  req.Complexity,
		CrossDomain: crossDomain,
	})

	c.mu.Lock()
	c.active[alloc.RequestID] = alloc
	c.mu.Unlock()

	c.persistAllocation(alloc)
	c.publish(ctx, events.TypeAllocationCreated, alloc.RequestID, alloc)
	telemetry.RecordAllocation(ctx, alloc.Primary.Domain, string(alloc.Strategy), alloc.EstimatedDuration)

	slog.Info("Allocation created",
		"request_id", alloc.RequestID,
		"work_item_id", req.WorkItemID,
		"primary_domain", decision.PrimaryDomain,
		"strategy", alloc.Strategy,
		"coordination", strategy.Type)

	return &WorkAssignment{
		Allocation: alloc,
		Routing:    decision,
		Strategy:   strategy,
		Plan:       plan,
	}, nil
}

// Complete closes an active allocation: every referenced agent gets the
// outcome folded into its metrics and returns to AVAILABLE, and the entry
// moves from the active table to history. The move happens atomically under
// the ledger lock, so a second Complete for the same request ID fails with
// ErrAllocationNotFound without touching agent state.
func (c *Coordinator) Complete(ctx context.Context, requestID string, outcome performance.Outcome) (*allocator.Allocation, error) {
	c.mu.Lock()
	alloc, ok := c.active[requestID]
	if ok {
		delete(c.active, requestID)
		c.history = append(c.history, alloc)
	}
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("complete %s: %w", requestID, ErrAllocationNotFound)
	}

	for _, id := range alloc.AgentIDs() {
		c.tracker.Update(id, outcome)
	}
	c.engine.ReleaseAll(alloc)

	if c.store != nil {
		if err := c.store.CompleteAllocation(requestID, outcome.Success, outcome.QualityScore, outcome.ActualMinutes, time.Now()); err != nil {
			slog.Warn("Ledger persist failed", "request_id", requestID, "error", err)
		}
		c.snapshotAgents(alloc.AgentIDs())
	}
	c.publish(ctx, events.TypeAllocationCompleted, requestID, map[string]any{
		"work_item_id": alloc.WorkItemID,
		"outcome":      outcome,
	})

	slog.Info("Allocation completed",
		"request_id", requestID,
		"work_item_id", alloc.WorkItemID,
		"success", outcome.Success,
		"quality", outcome.QualityScore)
	return alloc, nil
}

// Escalate raises an escalation, persists it, and publishes it.
func (c *Coordinator) Escalate(ctx context.Context, trigger escalation.Trigger, details string) escalation.Record {
	rec := c.escalations.Escalate(ctx, trigger, details)
	if c.store != nil {
		if err := c.store.SaveEscalation(rec); err != nil {
			slog.Warn("Escalation persist failed", "id", rec.ID, "error", err)
		}
	}
	c.publish(ctx, events.TypeEscalationRaised, rec.ID, rec)
	telemetry.RecordEscalation(ctx, string(trigger))
	return rec
}

// PoolStatistics summarizes the pool and ledger. A pure read: calling it
// twice without intervening allocations returns identical totals.
func (c *Coordinator) PoolStatistics() PoolStatistics {
	stats := PoolStatistics{
		TotalAgents: c.registry.Count(),
		ByStatus:    c.registry.CountByStatus(),
		ByDomain:    make(map[string]int),
	}
	for _, d := range c.registry.Domains() {
		stats.ByDomain[d] = len(c.registry.ListByDomain(d))
	}
	c.mu.Lock()
	stats.ActiveAllocations = len(c.active)
	stats.CompletedAllocations = len(c.history)
	c.mu.Unlock()
	return stats
}

// AgentsByDomain returns value copies of a domain's agents.
func (c *Coordinator) AgentsByDomain(domain string) []pool.Agent {
	return c.registry.ListByDomain(domain)
}

// ActiveAllocations returns copies of every active ledger entry.
func (c *Coordinator) ActiveAllocations() []allocator.Allocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]allocator.Allocation, 0, len(c.active))
	for _, alloc := range c.active {
		out = append(out, *alloc)
	}
	return out
}

// StatusCounts adapts the registry for the telemetry pool gauge.
func (c *Coordinator) StatusCounts() map[string]int {
	counts := make(map[string]int)
	for status, n := range c.registry.CountByStatus() {
		counts[string(status)] = n
	}
	return counts
}

func (c *Coordinator) persistAllocation(alloc *allocator.Allocation) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveAllocation(alloc); err != nil {
		slog.Warn("Ledger persist failed", "request_id", alloc.RequestID, "error", err)
	}
	c.snapshotAgents(alloc.AgentIDs())
}

func (c *Coordinator) snapshotAgents(ids []string) {
	for _, id := range ids {
		agent, ok := c.registry.Find(id)
		if !ok {
			continue
		}
		if err := c.store.UpsertAgent(agent); err != nil {
			slog.Warn("Agent snapshot failed", "agent_id", id, "error", err)
		}
	}
}

func (c *Coordinator) publish(ctx context.Context, typ events.Type, correlationID string, payload any) {
	if c.publisher == nil {
		return
	}
	env, err := events.NewEnvelope(typ, correlationID, payload)
	if err != nil {
		slog.Warn("Event build failed", "type", typ, "error", err)
		return
	}
	if err := c.publisher.Publish(ctx, env); err != nil {
		slog.Warn("Event publish failed", "type", typ, "correlation_id", correlationID, "error", err)
	}
}
