// Package rules implements the violation rule engine: a deterministic,
// side-effect-free scan of a call-record dataset producing a tiered
// ViolationSet with a derived compliance summary. Detectors are
// independent and additive; each checks column availability before
// running and a failure in one never aborts the others.
package rules

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/compliance-cli/internal/dataset"
	"github.com/sells-group/compliance-cli/internal/model"
)

// Engine scans datasets for regulatory threshold breaches.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine with the given aggregation config.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// detector is one rule in the battery. Detectors run in a fixed
// priority order since the summary's drop-violation flag depends on
// earlier tier placement.
type detector struct {
	name string
	run  func(d *dataset.Dataset, vs *model.ViolationSet)
}

func (e *Engine) detectors() []detector {
	return []detector{
		{"aggregate_drop_rate", detectAggregateDropRate},
		{"area_drop_rate", detectAreaDropRate},
		{"customer_drop_rate", detectCustomerDropRate},
		{"duration_drop_proxy", detectDurationDropProxy},
		{"excessive_duration", detectExcessiveDuration},
		{"high_frequency_caller", detectHighFrequencyCallers},
		{"off_hours", detectOffHours},
		{"missing_data", detectMissingData},
	}
}

// Scan runs the full detector battery over the dataset and returns the
// tiered findings plus the derived summary.
func (e *Engine) Scan(d *dataset.Dataset) *model.ViolationSet {
	vs := &model.ViolationSet{}

	for _, det := range e.detectors() {
		e.runSafely(det, d, vs)
	}

	vs.Summary = e.summarize(d, vs)

	zap.L().Info("rules: scan complete",
		zap.Int("records", d.Len()),
		zap.Int("high", len(vs.High)),
		zap.Int("medium", len(vs.Medium)),
		zap.Int("low", len(vs.Low)),
		zap.Int("compliance_score", vs.Summary.ComplianceScore),
	)

	return vs
}

// runSafely isolates detector failures: a panic in one detector is
// logged and swallowed so the remaining detectors still run.
func (e *Engine) runSafely(det detector, d *dataset.Dataset, vs *model.ViolationSet) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("rules: detector failed, skipping",
				zap.String("detector", det.name),
				zap.Any("panic", r),
			)
		}
	}()
	det.run(d, vs)
}

// summarize recomputes the summary from tier counts. Scores are pure
// functions of the counts, clamped so they never go negative.
func (e *Engine) summarize(d *dataset.Dataset, vs *model.ViolationSet) model.Summary {
	h, m, l := len(vs.High), len(vs.Medium), len(vs.Low)

	score := 100 - e.cfg.HighWeight*h - e.cfg.MediumWeight*m - e.cfg.LowWeight*l
	if score < 0 {
		score = 0
	}

	dropSeen := false
	for _, v := range append(append([]model.Violation{}, vs.High...), vs.Medium...) {
		if strings.Contains(v.Type, "Drop") {
			dropSeen = true
			break
		}
	}

	return model.Summary{
		TotalRecords:      d.Len(),
		HighCount:         h,
		MediumCount:       m,
		LowCount:          l,
		ComplianceScore:   score,
		EstimatedPenalty:  e.cfg.HighPenalty*int64(h) + e.cfg.MediumPenalty*int64(m) + e.cfg.LowPenalty*int64(l),
		DropViolationSeen: dropSeen,
	}
}
