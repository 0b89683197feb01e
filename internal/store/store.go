package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/topher/seiri-portal-sub002/internal/allocator"
	"github.com/topher/seiri-portal-sub002/internal/escalation"
	"github.com/topher/seiri-portal-sub002/internal/pool"
)

// Store is the durable SQLite mirror of the in-memory pool and ledger. The
// registry stays authoritative at runtime; the store exists so operator
// tooling and restarts see the last known state.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath and applies the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open agents db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	// Best-effort migrations for existing dbs (no-op if column exists).
	_, _ = db.Exec(`ALTER TABLE agents ADD COLUMN timezone TEXT DEFAULT ''`)
	_, _ = db.Exec(`ALTER TABLE agents ADD COLUMN working_hours TEXT DEFAULT ''`)
	_, _ = db.Exec(`ALTER TABLE agents ADD COLUMN capabilities TEXT DEFAULT '[]'`)
	_, _ = db.Exec(`ALTER TABLE allocations ADD COLUMN parent_id TEXT DEFAULT ''`)
	_, _ = db.Exec(`ALTER TABLE escalations ADD COLUMN details TEXT DEFAULT ''`)

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for shared access.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertAgent writes one agent snapshot.
func (s *Store) UpsertAgent(a pool.Agent) error {
	caps, err := json.Marshal(a.Capabilities)
	if err != nil {
		return fmt.Errorf("marshal capabilities for %s: %w", a.ID, err)
	}
	_, err = s.db.Exec(`INSERT INTO agents
		(agent_id, name, agent_type, domain, status, tasks_completed,
		 avg_quality_score, avg_completion_minutes, collaboration_rating, reliability_score,
		 max_concurrent_tasks, current_task_count, timezone, working_hours, capabilities,
		 last_active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(agent_id) DO UPDATE SET
			name = excluded.name,
			agent_type = excluded.agent_type,
			domain = excluded.domain,
			status = excluded.status,
			tasks_completed = excluded.tasks_completed,
			avg_quality_score = excluded.avg_quality_score,
			avg_completion_minutes = excluded.avg_completion_minutes,
			collaboration_rating = excluded.collaboration_rating,
			reliability_score = excluded.reliability_score,
			max_concurrent_tasks = excluded.max_concurrent_tasks,
			current_task_count = excluded.current_task_count,
			timezone = excluded.timezone,
			working_hours = excluded.working_hours,
			capabilities = excluded.capabilities,
			last_active = excluded.last_active,
			updated_at = datetime('now')`,
		a.ID, a.Name, string(a.Type), a.Domain, string(a.Status), a.Performance.TasksCompleted,
		a.Performance.AvgQualityScore, a.Performance.AvgCompletionMinutes,
		a.Performance.CollaborationRating, a.Performance.ReliabilityScore,
		a.Availability.MaxConcurrentTasks, a.Availability.CurrentTaskCount,
		a.Availability.Timezone, a.Availability.WorkingHours, string(caps), a.LastActive)
	if err != nil {
		return fmt.Errorf("upsert agent %s: %w", a.ID, err)
	}
	return nil
}

// UpsertAgents writes a batch of agent snapshots.
func (s *Store) UpsertAgents(agents []pool.Agent) error {
	for _, a := range agents {
		if err := s.UpsertAgent(a); err != nil {
			return err
		}
	}
	return nil
}

// LoadAgents returns every persisted agent snapshot, ordered by domain then ID.
func (s *Store) LoadAgents() ([]pool.Agent, error) {
	rows, err := s.db.Query(`SELECT agent_id, name, agent_type, domain, status,
		tasks_completed, avg_quality_score, avg_completion_minutes,
		collaboration_rating, reliability_score, max_concurrent_tasks,
		current_task_count, COALESCE(timezone,''), COALESCE(working_hours,''),
		COALESCE(capabilities,'[]'), last_active
		FROM agents ORDER BY domain ASC, agent_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	defer rows.Close()

	var agents []pool.Agent
	for rows.Next() {
		var a pool.Agent
		var typ, status, caps string
		var lastActive sql.NullTime
		if err := rows.Scan(&a.ID, &a.Name, &typ, &a.Domain, &status,
			&a.Performance.TasksCompleted, &a.Performance.AvgQualityScore,
			&a.Performance.AvgCompletionMinutes, &a.Performance.CollaborationRating,
			&a.Performance.ReliabilityScore, &a.Availability.MaxConcurrentTasks,
			&a.Availability.CurrentTaskCount, &a.Availability.Timezone,
			&a.Availability.WorkingHours, &caps, &lastActive); err != nil {
			return nil, err
		}
		a.Type = pool.AgentType(typ)
		a.Status = pool.AgentStatus(status)
		_ = json.Unmarshal([]byte(caps), &a.Capabilities)
		if lastActive.Valid {
			a.LastActive = lastActive.Time
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// SaveAllocation inserts an active ledger row for a fresh allocation.
func (s *Store) SaveAllocation(alloc *allocator.Allocation) error {
	supporting, err := json.Marshal(refIDs(alloc.Supporting))
	if err != nil {
		return fmt.Errorf("marshal supporting ids: %w", err)
	}
	reviewers, err := json.Marshal(refIDs(alloc.Reviewers))
	if err != nil {
		return fmt.Errorf("marshal reviewer ids: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO allocations
		(request_id, work_item_id, parent_id, primary_agent_id, supporting_ids,
		 reviewer_ids, strategy, estimated_minutes, allocated_at, expected_completion, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alloc.RequestID, alloc.WorkItemID, alloc.ParentID, alloc.Primary.ID,
		string(supporting), string(reviewers), string(alloc.Strategy),
		int(alloc.EstimatedDuration.Minutes()), alloc.AllocatedAt,
		alloc.ExpectedCompletion, AllocationActive)
	if err != nil {
		return fmt.Errorf("save allocation %s: %w", alloc.RequestID, err)
	}
	return nil
}

// CompleteAllocation marks a ledger row completed with its observed outcome.
func (s *Store) CompleteAllocation(requestID string, success bool, qualityScore, actualMinutes float64, completedAt time.Time) error {
	res, err := s.db.Exec(`UPDATE allocations SET
		status = ?, success = ?, quality_score = ?, actual_minutes = ?, completed_at = ?
		WHERE request_id = ? AND status = ?`,
		AllocationCompleted, success, qualityScore, actualMinutes, completedAt,
		requestID, AllocationActive)
	if err != nil {
		return fmt.Errorf("complete allocation %s: %w", requestID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("complete allocation %s: no active row", requestID)
	}
	return nil
}

// GetAllocation returns one ledger row by request ID.
func (s *Store) GetAllocation(requestID string) (*AllocationRecord, error) {
	row := s.db.QueryRow(`SELECT id, request_id, work_item_id, COALESCE(parent_id,''),
		primary_agent_id, COALESCE(supporting_ids,'[]'), COALESCE(reviewer_ids,'[]'),
		strategy, estimated_minutes, allocated_at, expected_completion, status,
		success, quality_score, actual_minutes, completed_at
		FROM allocations WHERE request_id = ?`, requestID)
	rec, err := scanAllocation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("allocation not found: %s", requestID)
	}
	if err != nil {
		return nil, fmt.Errorf("get allocation %s: %w", requestID, err)
	}
	return rec, nil
}

// ListAllocations returns ledger rows filtered by optional status, newest first.
func (s *Store) ListAllocations(status string, limit int) ([]AllocationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, request_id, work_item_id, COALESCE(parent_id,''),
		primary_agent_id, COALESCE(supporting_ids,'[]'), COALESCE(reviewer_ids,'[]'),
		strategy, estimated_minutes, allocated_at, expected_completion, status,
		success, quality_score, actual_minutes, completed_at
		FROM allocations WHERE 1=1`
	args := []any{}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY allocated_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	var out []AllocationRecord
	for rows.Next() {
		rec, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAllocation(row scanner) (*AllocationRecord, error) {
	var rec AllocationRecord
	var supporting, reviewers string
	var success sql.NullBool
	var quality, actual sql.NullFloat64
	var completedAt sql.NullTime
	err := row.Scan(&rec.ID, &rec.RequestID, &rec.WorkItemID, &rec.ParentID,
		&rec.PrimaryAgentID, &supporting, &reviewers, &rec.Strategy,
		&rec.EstimatedMinutes, &rec.AllocatedAt, &rec.ExpectedCompletion,
		&rec.Status, &success, &quality, &actual, &completedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(supporting), &rec.SupportingIDs)
	_ = json.Unmarshal([]byte(reviewers), &rec.ReviewerIDs)
	if success.Valid {
		rec.Success = &success.Bool
	}
	if quality.Valid {
		rec.QualityScore = &quality.Float64
	}
	if actual.Valid {
		rec.ActualMinutes = &actual.Float64
	}
	if completedAt.Valid {
		rec.CompletedAt = &completedAt.Time
	}
	return &rec, nil
}

// SaveEscalation inserts an escalation record.
func (s *Store) SaveEscalation(rec escalation.Record) error {
	actions, err := json.Marshal(rec.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions for %s: %w", rec.ID, err)
	}
	_, err = s.db.Exec(`INSERT INTO escalations
		(escalation_id, trigger_type, assigned_role, details, actions, created_at, expected_resolution)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Trigger), rec.AssignedRole, rec.Details,
		string(actions), rec.CreatedAt, rec.ExpectedResolution)
	if err != nil {
		return fmt.Errorf("save escalation %s: %w", rec.ID, err)
	}
	return nil
}

// ListEscalations returns persisted escalations, newest first.
func (s *Store) ListEscalations(limit int) ([]escalation.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT escalation_id, trigger_type, assigned_role,
		COALESCE(details,''), COALESCE(actions,'[]'), created_at, expected_resolution
		FROM escalations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list escalations: %w", err)
	}
	defer rows.Close()

	var out []escalation.Record
	for rows.Next() {
		var rec escalation.Record
		var trigger, actions string
		if err := rows.Scan(&rec.ID, &trigger, &rec.AssignedRole, &rec.Details,
			&actions, &rec.CreatedAt, &rec.ExpectedResolution); err != nil {
			return nil, err
		}
		rec.Trigger = escalation.Trigger(trigger)
		_ = json.Unmarshal([]byte(actions), &rec.Actions)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func refIDs(refs []allocator.AgentRef) []string {
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}
