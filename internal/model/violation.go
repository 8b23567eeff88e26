package model

// Tier classifies the regulatory risk of a violation finding.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Violation is a single finding produced by one detector. Findings are
// immutable once produced and are never merged across detectors, even
// when they overlap semantically.
type Violation struct {
	Type          string           `json:"type" yaml:"type"`
	Count         int              `json:"count" yaml:"count"`
	Description   string           `json:"description" yaml:"description"`
	Tier          Tier             `json:"severity_tier" yaml:"severity_tier"`
	PenaltyRange  string           `json:"penalty_range,omitempty" yaml:"penalty_range,omitempty"`
	PenaltyDetail string           `json:"penalty_calculation,omitempty" yaml:"penalty_calculation,omitempty"`
	RegulationRef string           `json:"regulation_ref,omitempty" yaml:"regulation_ref,omitempty"`
	Evidence      []map[string]any `json:"sample_records,omitempty" yaml:"sample_records,omitempty"`
}

// Summary aggregates a ViolationSet into headline compliance numbers.
// It is recomputed from tier counts, never mutated incrementally.
type Summary struct {
	TotalRecords      int   `json:"total_records_analyzed" yaml:"total_records_analyzed"`
	HighCount         int   `json:"high_risk_count" yaml:"high_risk_count"`
	MediumCount       int   `json:"medium_risk_count" yaml:"medium_risk_count"`
	LowCount          int   `json:"low_risk_count" yaml:"low_risk_count"`
	ComplianceScore   int   `json:"compliance_score" yaml:"compliance_score"`
	EstimatedPenalty  int64 `json:"estimated_penalty" yaml:"estimated_penalty"`
	DropViolationSeen bool  `json:"call_drop_violation_detected" yaml:"call_drop_violation_detected"`
}

// ViolationSet holds all findings from one scan, keyed by tier in
// detector order, plus the derived summary.
type ViolationSet struct {
	High    []Violation `json:"high_risk" yaml:"high_risk"`
	Medium  []Violation `json:"medium_risk" yaml:"medium_risk"`
	Low     []Violation `json:"low_risk" yaml:"low_risk"`
	Summary Summary     `json:"summary" yaml:"summary"`
}

// All returns the findings in iteration order: high, then medium, then
// low, each in detector order.
func (vs *ViolationSet) All() []Violation {
	out := make([]Violation, 0, len(vs.High)+len(vs.Medium)+len(vs.Low))
	out = append(out, vs.High...)
	out = append(out, vs.Medium...)
	out = append(out, vs.Low...)
	return out
}

// Add appends a finding to the sequence for its tier.
func (vs *ViolationSet) Add(v Violation) {
	switch v.Tier {
	case TierHigh:
		vs.High = append(vs.High, v)
	case TierMedium:
		vs.Medium = append(vs.Medium, v)
	default:
		vs.Low = append(vs.Low, v)
	}
}
