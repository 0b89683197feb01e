package pool

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SeedManifest declares the agents a registry starts with. Pools are seeded
// once at startup, from a YAML file or from DefaultSeed.
type SeedManifest struct {
	Domains []DomainSeed `yaml:"domains"`
}

// DomainSeed declares one domain and its agent roster.
type DomainSeed struct {
	Name   string      `yaml:"name"`
	Agents []AgentSeed `yaml:"agents"`
}

// AgentSeed declares one agent spec; count expands it into several records.
type AgentSeed struct {
	Name               string   `yaml:"name"`
	Type               string   `yaml:"type"`
	Count              int      `yaml:"count,omitempty"`
	MaxConcurrentTasks int      `yaml:"max_concurrent_tasks,omitempty"`
	Timezone           string   `yaml:"timezone,omitempty"`
	WorkingHours       string   `yaml:"working_hours,omitempty"`
	Skills             []string `yaml:"skills,omitempty"`
}

// ParseSeedYAML decodes a seed manifest from YAML bytes.
func ParseSeedYAML(data []byte) (SeedManifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return SeedManifest{}, fmt.Errorf("pool: seed manifest is empty")
	}
	var m SeedManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return SeedManifest{}, fmt.Errorf("pool: decode seed manifest: %w", err)
	}
	for _, d := range m.Domains {
		if d.Name == "" {
			return SeedManifest{}, fmt.Errorf("pool: seed manifest: domain with empty name")
		}
		for _, a := range d.Agents {
			if a.Name == "" || a.Type == "" {
				return SeedManifest{}, fmt.Errorf("pool: seed manifest: domain %s: agent needs name and type", d.Name)
			}
		}
	}
	return m, nil
}

// LoadSeedFile loads a seed manifest from a YAML file.
func LoadSeedFile(path string) (SeedManifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return SeedManifest{}, fmt.Errorf("pool: read %s: %w", path, err)
	}
	m, parseErr := ParseSeedYAML(content)
	if parseErr != nil {
		return SeedManifest{}, fmt.Errorf("pool: %s: %w", path, parseErr)
	}
	return m, nil
}

// Apply registers every agent the manifest declares and returns how many
// were created. IDs are deterministic (domain-type-n) so operator tooling
// and persisted snapshots line up across restarts.
func (m SeedManifest) Apply(r *Registry) (int, error) {
	created := 0
	for _, d := range m.Domains {
		for _, spec := range d.Agents {
			count := spec.Count
			if count < 1 {
				count = 1
			}
			for i := 1; i <= count; i++ {
				id := fmt.Sprintf("%s-%s-%d", d.Name, spec.Type, i)
				name := spec.Name
				if count > 1 {
					name = fmt.Sprintf("%s %d", spec.Name, i)
				}
				agent := NewAgent(id, name, AgentType(spec.Type), d.Name, spec.MaxConcurrentTasks)
				agent.Availability.Timezone = spec.Timezone
				agent.Availability.WorkingHours = spec.WorkingHours
				for _, skill := range spec.Skills {
					agent.Capabilities = append(agent.Capabilities, Capability{
						SkillDomain:   skill,
						Proficiency:   "advanced",
						LastValidated: time.Now(),
					})
				}
				if err := r.Add(agent); err != nil {
					return created, fmt.Errorf("pool: seed domain %s: %w", d.Name, err)
				}
				created++
			}
		}
	}
	return created, nil
}

// DefaultSeed mirrors the six workspace suites the platform ships with.
func DefaultSeed() SeedManifest {
	return SeedManifest{Domains: []DomainSeed{
		{Name: "development", Agents: []AgentSeed{
			{Name: "API Designer", Type: string(TypeAPIDesign), Count: 2, MaxConcurrentTasks: 3, Skills: []string{"api-design", "technical-architecture"}},
			{Name: "Data Analyst", Type: string(TypeDataAnalysis), Count: 1, MaxConcurrentTasks: 2, Skills: []string{"data-modeling"}},
			{Name: "QA Reviewer", Type: string(TypeQAReview), Count: 1, MaxConcurrentTasks: 3, Skills: []string{"quality-assurance"}},
		}},
		{Name: "marketing", Agents: []AgentSeed{
			{Name: "Market Researcher", Type: string(TypeMarketResearch), Count: 2, MaxConcurrentTasks: 3, Skills: []string{"market-research", "competitive-analysis"}},
			{Name: "Content Strategist", Type: string(TypeContentStrategy), Count: 1, MaxConcurrentTasks: 2, Skills: []string{"content-planning"}},
		}},
		{Name: "operations", Agents: []AgentSeed{
			{Name: "Ops Analyst", Type: string(TypeDataAnalysis), Count: 1, MaxConcurrentTasks: 2, Skills: []string{"process-optimization"}},
			{Name: "Ops Reviewer", Type: string(TypeQAReview), Count: 1, MaxConcurrentTasks: 2, Skills: []string{"compliance-review"}},
		}},
		{Name: "product", Agents: []AgentSeed{
			{Name: "Persona Analyst", Type: string(TypePersonaAnalysis), Count: 2, MaxConcurrentTasks: 3, Skills: []string{"persona-research", "user-interviews"}},
			{Name: "Product Reviewer", Type: string(TypeQAReview), Count: 1, MaxConcurrentTasks: 2, Skills: []string{"spec-review"}},
		}},
		{Name: "sales", Agents: []AgentSeed{
			{Name: "Deal Analyst", Type: string(TypeBusinessCase), Count: 1, MaxConcurrentTasks: 2, Skills: []string{"deal-modeling"}},
			{Name: "Field Researcher", Type: string(TypeMarketResearch), Count: 1, MaxConcurrentTasks: 2, Skills: []string{"account-research"}},
		}},
		{Name: "strategy", Agents: []AgentSeed{
			{Name: "Pricing Strategist", Type: string(TypePricingStrategy), Count: 2, MaxConcurrentTasks: 3, Skills: []string{"pricing-models", "unit-economics"}},
			{Name: "Business Case Author", Type: string(TypeBusinessCase), Count: 1, MaxConcurrentTasks: 2, Skills: []string{"business-planning"}},
		}},
	}}
}
