// Package raci maps a work item's responsibility matrix to a routing
// decision: which domain leads, which support, which are consulted or
// informed. Everything here is a pure function over its inputs.
package raci

// Matrix assigns RACI roles to domains for one unit of work.
type Matrix struct {
	Responsible []string `json:"responsible,omitempty"`
	Accountable string   `json:"accountable,omitempty"`
	Consulted   []string `json:"consulted,omitempty"`
	Informed    []string `json:"informed,omitempty"`
}

// RoutingDecision is the derived routing for one work item. It is
// recomputed per request and never stored.
type RoutingDecision struct {
	PrimaryDomain     string   `json:"primary_domain"`
	SupportingDomains []string `json:"supporting_domains,omitempty"`
	ConsultedDomains  []string `json:"consulted_domains,omitempty"`
	InformedDomains   []string `json:"informed_domains,omitempty"`
}

// DeliverableType hints at what kind of artifact the work item produces.
type DeliverableType string

const (
	DeliverablePersonaSet        DeliverableType = "PERSONA_SET"
	DeliverableFeatureSpec       DeliverableType = "FEATURE_SPEC"
	DeliverableMarketAnalysis    DeliverableType = "MARKET_ANALYSIS"
	DeliverableContentCalendar   DeliverableType = "CONTENT_CALENDAR"
	DeliverableAPISpecification  DeliverableType = "API_SPECIFICATION"
	DeliverableTechnicalDesign   DeliverableType = "TECHNICAL_DESIGN"
	DeliverablePricingModel      DeliverableType = "PRICING_MODEL"
	DeliverableBusinessCase      DeliverableType = "BUSINESS_CASE"
	DeliverableOperationsRunbook DeliverableType = "OPERATIONS_RUNBOOK"
)

// DefaultDomain receives work whose deliverable type maps to no domain.
const DefaultDomain = "strategy"

var domainByDeliverable = map[DeliverableType]string{
	DeliverablePersonaSet:        "product",
	DeliverableFeatureSpec:       "product",
	DeliverableMarketAnalysis:    "marketing",
	DeliverableContentCalendar:   "marketing",
	DeliverableAPISpecification:  "development",
	DeliverableTechnicalDesign:   "development",
	DeliverablePricingModel:      "strategy",
	DeliverableBusinessCase:      "strategy",
	DeliverableOperationsRunbook: "operations",
}

// DomainFor returns the domain a deliverable type maps to, falling back to
// DefaultDomain for unknown types.
func DomainFor(hint DeliverableType) string {
	if d, ok := domainByDeliverable[hint]; ok {
		return d
	}
	return DefaultDomain
}

// Resolve derives the routing decision for a matrix and deliverable hint.
//
// The accountable domain leads by default. The hint's mapped domain takes
// over only when it already holds a responsible or accountable role in the
// matrix; a hint can sharpen routing but never pull in an uninvolved
// domain. Supporting domains are the responsible ones minus the
// accountable domain and minus the chosen primary, since a domain cannot
// lead and support the same work item. A matrix without an accountable
// domain degrades to the hint's mapped domain. Resolve never fails.
func Resolve(m Matrix, hint DeliverableType) RoutingDecision {
	primary := m.Accountable
	hinted := DomainFor(hint)
	if primary == "" {
		primary = hinted
	} else if hinted != primary && contains(m.Responsible, hinted) {
		primary = hinted
	}

	var supporting []string
	seen := map[string]bool{m.Accountable: true, primary: true, "": true}
	for _, d := range m.Responsible {
		if seen[d] {
			continue
		}
		seen[d] = true
		supporting = append(supporting, d)
	}

	return RoutingDecision{
		PrimaryDomain:     primary,
		SupportingDomains: supporting,
		ConsultedDomains:  append([]string(nil), m.Consulted...),
		InformedDomains:   append([]string(nil), m.Informed...),
	}
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
