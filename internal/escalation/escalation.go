// Package escalation produces structured responses to stalled or degraded
// work: who owns the problem, what to do, and by when.
package escalation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Trigger classifies why work is being escalated.
type Trigger string

const (
	TriggerQualityIssue     Trigger = "QUALITY_ISSUE"
	TriggerResourceConflict Trigger = "RESOURCE_CONFLICT"
	TriggerScopeChange      Trigger = "SCOPE_CHANGE"
	TriggerTimelineDelay    Trigger = "TIMELINE_DELAY"
)

// ResolutionWindow is how long an escalation owner has to resolve it.
const ResolutionWindow = 48 * time.Hour

// Record is one raised escalation. Immutable once created.
type Record struct {
	ID                 string    `json:"id"`
	Trigger            Trigger   `json:"trigger"`
	AssignedRole       string    `json:"assigned_role"`
	Details            string    `json:"details,omitempty"`
	Actions            []string  `json:"actions"`
	CreatedAt          time.Time `json:"created_at"`
	ExpectedResolution time.Time `json:"expected_resolution"`
}

// Notifier receives raised escalations, e.g. to post them to a channel.
type Notifier interface {
	EscalationRaised(ctx context.Context, rec Record) error
}

type playbook struct {
	role    string
	actions []string
}

// Playbooks are static per trigger; they never depend on request state.
var playbooks = map[Trigger]playbook{
	TriggerQualityIssue: {
		role: "QUALITY_LEAD",
		actions: []string{
			"Review the deliverable against the failed review gate",
			"Schedule a remediation pass with the primary agent",
			"Re-run the review gate before hand-off",
		},
	},
	TriggerResourceConflict: {
		role: "CAPACITY_MANAGER",
		actions: []string{
			"Audit agent availability across the involved domains",
			"Rebalance concurrent assignments or raise capacity",
			"Requeue the blocked allocation request",
		},
	},
	TriggerScopeChange: {
		role: "PRODUCT_OWNER",
		actions: []string{
			"Reassess the responsibility matrix for the work item",
			"Re-estimate effort and update the execution plan",
			"Confirm the revised scope with the requester",
		},
	},
}

var defaultPlaybook = playbook{
	role: "DELIVERY_COORDINATOR",
	actions: []string{
		"Notify stakeholders of the delay",
		"Replan milestones from the current state",
		"Consider reallocating the remaining work",
	},
}

// Manager turns triggers into escalation records and fans them out to an
// optional notifier.
type Manager struct {
	notifier Notifier
	now      func() time.Time
}

// NewManager creates a manager. notifier may be nil.
func NewManager(notifier Notifier) *Manager {
	return &Manager{notifier: notifier, now: time.Now}
}

// Escalate builds the record for a trigger. Unknown triggers, including
// TIMELINE_DELAY, use the default playbook. Notification failures are
// logged and never block the escalation itself.
func (m *Manager) Escalate(ctx context.Context, trigger Trigger, details string) Record {
	pb, ok := playbooks[trigger]
	if !ok {
		pb = defaultPlaybook
	}
	now := m.now()
	rec := Record{
		ID:                 uuid.NewString(),
		Trigger:            trigger,
		AssignedRole:       pb.role,
		Details:            details,
		Actions:            append([]string(nil), pb.actions...),
		CreatedAt:          now,
		ExpectedResolution: now.Add(ResolutionWindow),
	}
	slog.Info("Escalation raised", "id", rec.ID, "trigger", trigger, "assigned_role", rec.AssignedRole)

	if m.notifier != nil {
		if err := m.notifier.EscalationRaised(ctx, rec); err != nil {
			slog.Warn("Escalation notification failed", "id", rec.ID, "error", err)
		}
	}
	return rec
}
