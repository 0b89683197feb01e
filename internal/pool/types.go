// Package pool maintains the workspace agent pool: typed agents grouped by
// owning domain, with status and task-capacity tracking for allocation.
package pool

import "time"

// AgentType is an agent's specialization, e.g. "pricing-strategy".
type AgentType string

// Built-in specializations seeded across the default domains. The registry
// accepts any AgentType; these are the ones the platform ships with.
const (
	TypePersonaAnalysis AgentType = "persona-analysis"
	TypePricingStrategy AgentType = "pricing-strategy"
	TypeMarketResearch  AgentType = "market-research"
	TypeContentStrategy AgentType = "content-strategy"
	TypeAPIDesign       AgentType = "api-design"
	TypeDataAnalysis    AgentType = "data-analysis"
	TypeQAReview        AgentType = "qa-review"
	TypeBusinessCase    AgentType = "business-case"
)

// AgentStatus is the allocation state of an agent.
type AgentStatus string

const (
	StatusAvailable   AgentStatus = "AVAILABLE"
	StatusBusy        AgentStatus = "BUSY"
	StatusOffline     AgentStatus = "OFFLINE"
	StatusMaintenance AgentStatus = "MAINTENANCE"
)

// Seeded performance defaults for a freshly created agent.
const (
	DefaultQualityScore       = 85.0
	DefaultCompletionMinutes  = 30.0
	DefaultCollaborationScore = 80.0
	DefaultReliabilityScore   = 90.0
)

// Capability describes one validated skill of an agent.
type Capability struct {
	SkillDomain     string    `json:"skill_domain"`
	Proficiency     string    `json:"proficiency"` // "intermediate", "advanced", "expert"
	Specializations []string  `json:"specializations,omitempty"`
	LastValidated   time.Time `json:"last_validated"`
}

// Performance holds an agent's rolling outcome metrics.
// Scores are 0-100; completion time is in minutes.
type Performance struct {
	TasksCompleted       int       `json:"tasks_completed"`
	AvgQualityScore      float64   `json:"avg_quality_score"`
	AvgCompletionMinutes float64   `json:"avg_completion_minutes"`
	CollaborationRating  float64   `json:"collaboration_rating"`
	ReliabilityScore     float64   `json:"reliability_score"`
	LastUpdated          time.Time `json:"last_updated"`
}

// Availability tracks concurrency limits plus advisory scheduling hints.
// Timezone and working hours are informational only, never enforced.
type Availability struct {
	MaxConcurrentTasks int    `json:"max_concurrent_tasks"`
	CurrentTaskCount   int    `json:"current_task_count"`
	Timezone           string `json:"timezone,omitempty"`
	WorkingHours       string `json:"working_hours,omitempty"` // e.g. "09:00-17:00"
}

// Collaboration describes how an agent works with others.
type Collaboration struct {
	PreferredPartners        []string `json:"preferred_partners,omitempty"`
	SuccessfulCollaborations int      `json:"successful_collaborations"`
	CrossDomainExperience    []string `json:"cross_domain_experience,omitempty"`
	CommunicationStyle       string   `json:"communication_style,omitempty"`
}

// Agent is one allocatable resource in the pool.
// Invariant: 0 <= CurrentTaskCount <= MaxConcurrentTasks, and a BUSY agent
// always has CurrentTaskCount >= 1.
type Agent struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Type          AgentType     `json:"type"`
	Domain        string        `json:"domain"`
	Status        AgentStatus   `json:"status"`
	Capabilities  []Capability  `json:"capabilities,omitempty"`
	Performance   Performance   `json:"performance"`
	Availability  Availability  `json:"availability"`
	Collaboration Collaboration `json:"collaboration"`
	LastActive    time.Time     `json:"last_active"`
}

// NewAgent builds an AVAILABLE agent with seeded performance defaults.
// maxTasks values below 1 are raised to 1.
func NewAgent(id, name string, typ AgentType, domain string, maxTasks int) Agent {
	if maxTasks < 1 {
		maxTasks = 1
	}
	now := time.Now()
	return Agent{
		ID:     id,
		Name:   name,
		Type:   typ,
		Domain: domain,
		Status: StatusAvailable,
		Performance: Performance{
			AvgQualityScore:      DefaultQualityScore,
			AvgCompletionMinutes: DefaultCompletionMinutes,
			CollaborationRating:  DefaultCollaborationScore,
			ReliabilityScore:     DefaultReliabilityScore,
			LastUpdated:          now,
		},
		Availability: Availability{
			MaxConcurrentTasks: maxTasks,
		},
		LastActive: now,
	}
}

// Eligible reports whether the agent can accept one more task.
func (a *Agent) Eligible() bool {
	return a.Status == StatusAvailable &&
		a.Availability.CurrentTaskCount < a.Availability.MaxConcurrentTasks
}
