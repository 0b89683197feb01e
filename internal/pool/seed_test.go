package pool

import "testing"

func TestParseSeedYAML(t *testing.T) {
	data := []byte(`
domains:
  - name: strategy
    agents:
      - name: Pricing Strategist
        type: pricing-strategy
        count: 2
        max_concurrent_tasks: 3
        skills: [pricing-models]
      - name: Business Case Author
        type: business-case
`)
	m, err := ParseSeedYAML(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(m.Domains) != 1 || m.Domains[0].Name != "strategy" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	if len(m.Domains[0].Agents) != 2 || m.Domains[0].Agents[0].Count != 2 {
		t.Fatalf("unexpected agents: %+v", m.Domains[0].Agents)
	}
}

func TestParseSeedYAMLRejectsBadInput(t *testing.T) {
	if _, err := ParseSeedYAML(nil); err == nil {
		t.Fatal("expected error for empty manifest")
	}
	if _, err := ParseSeedYAML([]byte("domains:\n  - name: x\n    agents:\n      - type: qa-review\n")); err == nil {
		t.Fatal("expected error for agent without name")
	}
	if _, err := ParseSeedYAML([]byte("domains: [")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestApplySeed(t *testing.T) {
	m := SeedManifest{Domains: []DomainSeed{
		{Name: "strategy", Agents: []AgentSeed{
			{Name: "Pricing Strategist", Type: "pricing-strategy", Count: 2, MaxConcurrentTasks: 3},
			{Name: "Business Case Author", Type: "business-case"},
		}},
	}}
	r := NewRegistry()
	n, err := m.Apply(r)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if n != 3 || r.Count() != 3 {
		t.Fatalf("expected 3 agents, got n=%d count=%d", n, r.Count())
	}

	a, ok := r.Find("strategy-pricing-strategy-1")
	if !ok {
		t.Fatal("expected deterministic ID strategy-pricing-strategy-1")
	}
	if a.Name != "Pricing Strategist 1" || a.Availability.MaxConcurrentTasks != 3 {
		t.Fatalf("unexpected agent: %+v", a)
	}

	single, _ := r.Find("strategy-business-case-1")
	if single.Name != "Business Case Author" {
		t.Fatalf("single-count agents keep the plain name, got %q", single.Name)
	}
	if single.Availability.MaxConcurrentTasks != 1 {
		t.Fatalf("missing max should default to 1, got %d", single.Availability.MaxConcurrentTasks)
	}
}

func TestDefaultSeedApplies(t *testing.T) {
	r := NewRegistry()
	n, err := DefaultSeed().Apply(r)
	if err != nil {
		t.Fatalf("apply default seed: %v", err)
	}
	if n != 17 {
		t.Fatalf("expected 17 seeded agents, got %d", n)
	}
	domains := r.Domains()
	want := []string{"development", "marketing", "operations", "product", "sales", "strategy"}
	if len(domains) != len(want) {
		t.Fatalf("expected %d domains, got %v", len(want), domains)
	}
	for i := range want {
		if domains[i] != want[i] {
			t.Fatalf("expected domains %v, got %v", want, domains)
		}
	}
	for _, a := range r.All() {
		if !a.Eligible() {
			t.Fatalf("seeded agent %s should start eligible", a.ID)
		}
	}
}
