package pool

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry is the thread-safe owner of all mutable agent state. Agents are
// grouped by (domain, type) buckets; every other component reads value
// copies through it and mutates only via registry methods.
type Registry struct {
	mu       sync.RWMutex
	agents   map[string]*Agent   // agent_id -> record
	byDomain map[string][]string // domain -> agent IDs in insertion order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		agents:   make(map[string]*Agent),
		byDomain: make(map[string][]string),
	}
}

// Add inserts an agent. Agents are created at pool initialization and never
// deleted, so a duplicate ID is a caller bug.
func (r *Registry) Add(agent Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[agent.ID]; exists {
		return fmt.Errorf("agent %s already registered", agent.ID)
	}
	if agent.Availability.MaxConcurrentTasks < 1 {
		agent.Availability.MaxConcurrentTasks = 1
	}
	r.agents[agent.ID] = &agent
	r.byDomain[agent.Domain] = append(r.byDomain[agent.Domain], agent.ID)
	return nil
}

// Find returns a copy of the agent by ID.
func (r *Registry) Find(id string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	if !ok {
		return Agent{}, false
	}
	return *a, true
}

// ListByDomainAndType returns the (domain, type) bucket in insertion order.
func (r *Registry) ListByDomainAndType(domain string, typ AgentType) []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Agent
	for _, id := range r.byDomain[domain] {
		if a := r.agents[id]; a.Type == typ {
			out = append(out, *a)
		}
	}
	return out
}

// ListByDomain returns all agents of a domain in insertion order.
func (r *Registry) ListByDomain(domain string) []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Agent, 0, len(r.byDomain[domain]))
	for _, id := range r.byDomain[domain] {
		out = append(out, *r.agents[id])
	}
	return out
}

// Domains returns all domain names in lexicographic order. This is the
// documented iteration order for cross-domain fallback searches.
func (r *Registry) Domains() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	domains := make([]string, 0, len(r.byDomain))
	for d := range r.byDomain {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// All returns every agent, ordered by domain then insertion.
func (r *Registry) All() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	domains := make([]string, 0, len(r.byDomain))
	for d := range r.byDomain {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	out := make([]Agent, 0, len(r.agents))
	for _, d := range domains {
		for _, id := range r.byDomain[d] {
			out = append(out, *r.agents[id])
		}
	}
	return out
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// CountByStatus returns agent counts grouped by status.
func (r *Registry) CountByStatus() map[AgentStatus]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[AgentStatus]int)
	for _, a := range r.agents {
		counts[a.Status]++
	}
	return counts
}

// Claim atomically reserves an agent for one task: it succeeds only if the
// agent is AVAILABLE with spare capacity, and then marks it BUSY with the
// task count incremented. The verify-and-mark runs under one write lock so
// two racing allocation requests can never both claim the same agent.
func (r *Registry) Claim(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[id]
	if !ok || !a.Eligible() {
		return false
	}
	a.Availability.CurrentTaskCount++
	a.Status = StatusBusy
	a.LastActive = time.Now()
	return true
}

// Release returns a BUSY agent to AVAILABLE, decrementing its task count
// (never below zero). Releasing an agent that is not BUSY is a no-op.
func (r *Registry) Release(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[id]
	if !ok {
		return false
	}
	if a.Status != StatusBusy {
		return false
	}
	if a.Availability.CurrentTaskCount > 0 {
		a.Availability.CurrentTaskCount--
	}
	a.Status = StatusAvailable
	a.LastActive = time.Now()
	return true
}

// SetStatus applies an operator-driven status change, covering the OFFLINE
// and MAINTENANCE transitions that no allocation path ever takes. Entering
// BUSY increments the task count (capped at the concurrency limit); leaving
// BUSY decrements it, never below zero.
func (r *Registry) SetStatus(id string, status AgentStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[id]
	if !ok {
		return false
	}
	if status == StatusBusy && a.Status != StatusBusy {
		if a.Availability.CurrentTaskCount < a.Availability.MaxConcurrentTasks {
			a.Availability.CurrentTaskCount++
		}
	}
	if status != StatusBusy && a.Status == StatusBusy {
		if a.Availability.CurrentTaskCount > 0 {
			a.Availability.CurrentTaskCount--
		}
	}
	a.Status = status
	a.LastActive = time.Now()
	return true
}

// UpdatePerformance applies a metrics mutation to one agent. Status and
// task counts stay under registry control; callers only touch Performance.
func (r *Registry) UpdatePerformance(id string, update func(p *Performance)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[id]
	if !ok {
		return false
	}
	update(&a.Performance)
	return true
}
