package render

// Derived-field algorithms. Each is a pure deterministic function with a
// fixed three-valued output; derived fields never appear as raw arrays in
// rendered output, only as these pre-reduced scalars.

// Derived field names recognized in section specs.
const (
	DerivedRiskLevel          = "risk_level"
	DerivedIntegrationSurface = "integration_surface"
	DerivedComplexityLevel    = "complexity_level"
)

// complexityCollections are the four named collections whose element
// counts feed the complexity score.
var complexityCollections = []string{
	"systems_touched",
	"key_interfaces",
	"dependencies",
	"external_integrations",
}

// RiskLevel reduces a risk list to "high", "medium", or "low" by the
// highest likelihood present. An empty or malformed list is "low".
func RiskLevel(risks any) string {
	level := "low"
	for _, r := range asList(risks) {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		switch m["likelihood"] {
		case "high":
			return "high"
		case "medium":
			level = "medium"
		}
	}
	return level
}

// IntegrationSurface reports "external" when the object carries at least
// one external-integration entry (raw list or {items: [...]} wrapper),
// "none" otherwise.
func IntegrationSurface(obj map[string]any) string {
	if len(asList(obj["external_integrations"])) > 0 {
		return "external"
	}
	return "none"
}

// ComplexityLevel sums the counts of the four complexity collections.
// Each may be missing, a raw list, or an {items: [...]} wrapper.
// 0-3 is "low", 4-7 is "medium", 8 and above is "high".
func ComplexityLevel(obj map[string]any) string {
	total := 0
	for _, name := range complexityCollections {
		total += len(asList(obj[name]))
	}
	switch {
	case total <= 3:
		return "low"
	case total <= 7:
		return "medium"
	default:
		return "high"
	}
}

// computeDerived evaluates a named derived field against the section's
// resolved source data. The second return is false for unknown names.
func computeDerived(name string, obj map[string]any) (any, bool) {
	switch name {
	case DerivedRiskLevel:
		return RiskLevel(obj["risks"]), true
	case DerivedIntegrationSurface:
		return IntegrationSurface(obj), true
	case DerivedComplexityLevel:
		return ComplexityLevel(obj), true
	default:
		return nil, false
	}
}
