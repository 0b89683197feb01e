// Package allocator selects, scores, and reserves agents for work items,
// with cross-domain fallback and transactional rollback when the mandatory
// role cannot be filled.
package allocator

import (
	"errors"
	"time"

	"github.com/topher/seiri-portal-sub002/internal/pool"
)

// ErrNoAgentAvailable reports that the primary role could not be filled.
// Unfilled supporting or reviewer slots are omitted silently instead.
var ErrNoAgentAvailable = errors.New("no agent available")

// Priority of an allocation request.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Role an agent plays within one allocation.
type Role string

const (
	RolePrimary    Role = "PRIMARY"
	RoleSupporting Role = "SUPPORTING"
	RoleReviewer   Role = "REVIEWER"
)

// Strategy tags how the allocated agents execute, derived purely from how
// many supporting and reviewer slots were filled.
type Strategy string

const (
	StrategySolo          Strategy = "SOLO_EXECUTION"
	StrategyCollaborative Strategy = "COLLABORATIVE_EXECUTION"
	StrategyReviewed      Strategy = "REVIEWED_EXECUTION"
	StrategyFull          Strategy = "FULL_COLLABORATION"
)

// Roles maps the requested roles to agent types.
type Roles struct {
	Primary    pool.AgentType   `json:"primary"`
	Supporting []pool.AgentType `json:"supporting,omitempty"`
	Reviewers  []pool.AgentType `json:"reviewers,omitempty"`
}

// Routing carries the request's domain preferences.
type Routing struct {
	PreferredDomain    string   `json:"preferred_domain,omitempty"`
	DomainContext      string   `json:"domain_context,omitempty"`
	CollaborationNeeds []string `json:"collaboration_needs,omitempty"`
}

// Request asks for agents to execute one unit of work. Consumed once; only
// the allocation it produces is kept.
type Request struct {
	RequestID  string     `json:"request_id"`
	WorkItemID string     `json:"work_item_id"`
	ParentID   string     `json:"parent_id,omitempty"`
	Roles      Roles      `json:"roles"`
	Priority   Priority   `json:"priority"`
	Deadline   *time.Time `json:"deadline,omitempty"` // advisory, never enforced
	Routing    Routing    `json:"routing"`
}

// AgentRef is a point-in-time reference to a reserved agent.
type AgentRef struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Type   pool.AgentType `json:"type"`
	Domain string         `json:"domain"`
}

// Allocation binds reserved agents to a work item for its execution
// window. Every referenced agent reads BUSY while the allocation is
// active.
type Allocation struct {
	RequestID          string        `json:"request_id"`
	WorkItemID         string        `json:"work_item_id"`
	ParentID           string        `json:"parent_id,omitempty"`
	Primary            AgentRef      `json:"primary"`
	Supporting         []AgentRef    `json:"supporting,omitempty"`
	Reviewers          []AgentRef    `json:"reviewers,omitempty"`
	Strategy           Strategy      `json:"strategy"`
	EstimatedDuration  time.Duration `json:"estimated_duration"`
	AllocatedAt        time.Time     `json:"allocated_at"`
	ExpectedCompletion time.Time     `json:"expected_completion"`
}

// AgentIDs returns every agent referenced by the allocation, primary
// first, in role order.
func (a *Allocation) AgentIDs() []string {
	ids := make([]string, 0, 1+len(a.Supporting)+len(a.Reviewers))
	ids = append(ids, a.Primary.ID)
	for _, ref := range a.Supporting {
		ids = append(ids, ref.ID)
	}
	for _, ref := range a.Reviewers {
		ids = append(ids, ref.ID)
	}
	return ids
}
