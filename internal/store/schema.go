// Package store persists agent snapshots, the allocation ledger, and
// escalation records to SQLite.
package store

import "time"

// AllocationRecord is one ledger row. Supporting and reviewer IDs are
// stored as JSON arrays.
type AllocationRecord struct {
	ID                 int64      `json:"id"`
	RequestID          string     `json:"request_id"`
	WorkItemID         string     `json:"work_item_id"`
	ParentID           string     `json:"parent_id,omitempty"`
	PrimaryAgentID     string     `json:"primary_agent_id"`
	SupportingIDs      []string   `json:"supporting_ids,omitempty"`
	ReviewerIDs        []string   `json:"reviewer_ids,omitempty"`
	Strategy           string     `json:"strategy"`
	EstimatedMinutes   int        `json:"estimated_minutes"`
	AllocatedAt        time.Time  `json:"allocated_at"`
	ExpectedCompletion time.Time  `json:"expected_completion"`
	Status             string     `json:"status"`
	Success            *bool      `json:"success,omitempty"`
	QualityScore       *float64   `json:"quality_score,omitempty"`
	ActualMinutes      *float64   `json:"actual_minutes,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// Allocation ledger states.
const (
	AllocationActive    = "active"
	AllocationCompleted = "completed"
)

const Schema = `
CREATE TABLE IF NOT EXISTS agents (
	agent_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	agent_type TEXT NOT NULL,
	domain TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'AVAILABLE',
	tasks_completed INTEGER NOT NULL DEFAULT 0,
	avg_quality_score REAL NOT NULL DEFAULT 85,
	avg_completion_minutes REAL NOT NULL DEFAULT 30,
	collaboration_rating REAL NOT NULL DEFAULT 80,
	reliability_score REAL NOT NULL DEFAULT 90,
	max_concurrent_tasks INTEGER NOT NULL DEFAULT 1,
	current_task_count INTEGER NOT NULL DEFAULT 0,
	timezone TEXT DEFAULT '',
	working_hours TEXT DEFAULT '',
	capabilities TEXT DEFAULT '[]',
	last_active DATETIME,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_agents_domain ON agents(domain);
CREATE INDEX IF NOT EXISTS idx_agents_domain_type ON agents(domain, agent_type);

CREATE TABLE IF NOT EXISTS allocations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT UNIQUE NOT NULL,
	work_item_id TEXT NOT NULL,
	parent_id TEXT DEFAULT '',
	primary_agent_id TEXT NOT NULL,
	supporting_ids TEXT DEFAULT '[]',
	reviewer_ids TEXT DEFAULT '[]',
	strategy TEXT NOT NULL,
	estimated_minutes INTEGER NOT NULL DEFAULT 0,
	allocated_at DATETIME NOT NULL,
	expected_completion DATETIME,
	status TEXT NOT NULL DEFAULT 'active',
	success BOOLEAN,
	quality_score REAL,
	actual_minutes REAL,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_allocations_status ON allocations(status);
CREATE INDEX IF NOT EXISTS idx_allocations_work_item ON allocations(work_item_id);

CREATE TABLE IF NOT EXISTS escalations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	escalation_id TEXT UNIQUE NOT NULL,
	trigger_type TEXT NOT NULL,
	assigned_role TEXT NOT NULL,
	details TEXT DEFAULT '',
	actions TEXT DEFAULT '[]',
	created_at DATETIME NOT NULL,
	expected_resolution DATETIME
);

CREATE INDEX IF NOT EXISTS idx_escalations_trigger ON escalations(trigger_type);
`
