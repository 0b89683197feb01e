package raci

import "testing"

func TestResolveAccountableLeads(t *testing.T) {
	d := Resolve(Matrix{
		Accountable: "product",
		Responsible: []string{"product", "marketing"},
		Consulted:   []string{"development"},
		Informed:    []string{"sales"},
	}, "SOMETHING_UNMAPPED")
	if d.PrimaryDomain != "product" {
		t.Fatalf("primary: %q", d.PrimaryDomain)
	}
	if len(d.SupportingDomains) != 1 || d.SupportingDomains[0] != "marketing" {
		t.Fatalf("supporting: %v", d.SupportingDomains)
	}
	if len(d.ConsultedDomains) != 1 || d.ConsultedDomains[0] != "development" {
		t.Fatalf("consulted: %v", d.ConsultedDomains)
	}
	if len(d.InformedDomains) != 1 || d.InformedDomains[0] != "sales" {
		t.Fatalf("informed: %v", d.InformedDomains)
	}
}

func TestResolveHintOverridesWithinMatrix(t *testing.T) {
	d := Resolve(Matrix{
		Accountable: "strategy",
		Responsible: []string{"strategy", "marketing"},
	}, DeliverableMarketAnalysis)
	if d.PrimaryDomain != "marketing" {
		t.Fatalf("hinted responsible domain should lead, got %q", d.PrimaryDomain)
	}
	if len(d.SupportingDomains) != 0 {
		t.Fatalf("the new primary must not also support: %v", d.SupportingDomains)
	}
}

func TestResolveHintIgnoredOutsideMatrix(t *testing.T) {
	d := Resolve(Matrix{
		Accountable: "product",
		Responsible: []string{"product"},
	}, DeliverableMarketAnalysis)
	if d.PrimaryDomain != "product" {
		t.Fatalf("hint for an uninvolved domain must not override, got %q", d.PrimaryDomain)
	}
}

func TestResolveEmptyMatrixDegrades(t *testing.T) {
	if d := Resolve(Matrix{}, DeliverablePersonaSet); d.PrimaryDomain != "product" {
		t.Fatalf("empty matrix should take the hinted domain, got %q", d.PrimaryDomain)
	}
	d := Resolve(Matrix{}, "SOMETHING_UNMAPPED")
	if d.PrimaryDomain != DefaultDomain {
		t.Fatalf("unmapped hint should default to %q, got %q", DefaultDomain, d.PrimaryDomain)
	}
	if len(d.SupportingDomains) != 0 || len(d.ConsultedDomains) != 0 {
		t.Fatalf("empty matrix yields no extra domains: %+v", d)
	}
}

func TestResolveDeduplicatesSupporting(t *testing.T) {
	d := Resolve(Matrix{
		Accountable: "development",
		Responsible: []string{"marketing", "marketing", "operations", "development", ""},
	}, "X")
	if len(d.SupportingDomains) != 2 || d.SupportingDomains[0] != "marketing" || d.SupportingDomains[1] != "operations" {
		t.Fatalf("supporting should dedup in order and skip blanks: %v", d.SupportingDomains)
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	m := Matrix{
		Accountable: "product",
		Responsible: []string{"product", "marketing"},
		Consulted:   []string{"development"},
	}
	first := Resolve(m, DeliverablePersonaSet)
	second := Resolve(m, DeliverablePersonaSet)
	if first.PrimaryDomain != second.PrimaryDomain || len(first.SupportingDomains) != len(second.SupportingDomains) {
		t.Fatalf("resolve must be deterministic: %+v vs %+v", first, second)
	}
	if m.Responsible[0] != "product" || m.Consulted[0] != "development" {
		t.Fatalf("input matrix mutated: %+v", m)
	}
	first.ConsultedDomains[0] = "changed"
	if m.Consulted[0] != "development" {
		t.Fatal("decision slices must not alias matrix slices")
	}
}

func TestDomainFor(t *testing.T) {
	cases := map[DeliverableType]string{
		DeliverablePersonaSet:        "product",
		DeliverableMarketAnalysis:    "marketing",
		DeliverableAPISpecification:  "development",
		DeliverableOperationsRunbook: "operations",
		"UNKNOWN_THING":              DefaultDomain,
	}
	for hint, want := range cases {
		if got := DomainFor(hint); got != want {
			t.Errorf("DomainFor(%s) = %q, want %q", hint, got, want)
		}
	}
}
