package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/compliance-cli/internal/dataset"
	"github.com/sells-group/compliance-cli/internal/model"
)

// Regulatory thresholds. The 2% drop-rate benchmark and its strict
// greater-than semantics come from the TRAI QoS standard: a rate of
// exactly 2.0% is at the limit, not over it.
const (
	dropRateLimit    = 2.0
	dropRateWarn     = 1.5
	dropRateMonitor  = 1.0
	customerDropRate = 20.0
	shortCallSecs    = 3.0
	longCallSecs     = 3600.0
	highFreqCalls    = 100
	businessOpenHr   = 8
	businessCloseHr  = 22

	regulationQoS      = "TRAI QoS Standards 2024"
	regulationAreaQoS  = "TRAI QoS Standards 2024 - Area-wise compliance"
	regulationMonitor  = "TRAI QoS Standards - Preventive monitoring"
	regulationCustomer = "TRAI Customer Protection Standards"

	evidenceSampleSize = 3
)

// detectAggregateDropRate computes the dataset-wide drop rate from the
// explicit drop counters and grades any breach of the 2% benchmark.
func detectAggregateDropRate(d *dataset.Dataset, vs *model.ViolationSet) {
	if !d.HasColumns(dataset.ColTotalCalls, dataset.ColCallDrops) {
		return
	}

	var totalCalls, totalDrops float64
	var customersWithDrops int
	var evidence []map[string]any

	for row := range d.Rows {
		total, okT := d.Float(row, dataset.ColTotalCalls)
		drops, okD := d.Float(row, dataset.ColCallDrops)
		if !okT || !okD {
			continue
		}
		totalCalls += total
		totalDrops += drops
		if drops > 0 {
			customersWithDrops++
			if len(evidence) < evidenceSampleSize {
				evidence = append(evidence, d.Record(row,
					dataset.ColCustomerID, dataset.ColServiceArea,
					dataset.ColTotalCalls, dataset.ColCallDrops))
			}
		}
	}

	rate := 0.0
	if totalCalls > 0 {
		rate = totalDrops / totalCalls * 100
	}

	switch {
	case rate > dropRateLimit:
		tier := dropPenaltyTier(rate)
		vs.Add(model.Violation{
			Type:  "TRAI Call Drop Rate Violation",
			Count: int(totalDrops),
			Description: fmt.Sprintf("%d call drops out of %d total calls (%.2f%% rate, exceeds TRAI limit by %.2f%%, %d customers affected)",
				int(totalDrops), int(totalCalls), rate, rate-dropRateLimit, customersWithDrops),
			Tier:          model.TierHigh,
			PenaltyRange:  tier.Penalty,
			PenaltyDetail: tier.Calculation,
			RegulationRef: regulationQoS,
			Evidence:      evidence,
		})
	case rate > dropRateWarn:
		vs.Add(model.Violation{
			Type:          "High Call Drop Rate (Warning)",
			Count:         int(totalDrops),
			Description:   fmt.Sprintf("%d call drops (%.2f%% rate) - near TRAI limit", int(totalDrops), rate),
			Tier:          model.TierMedium,
			PenaltyRange:  "₹50,000 - Warning level",
			RegulationRef: regulationQoS,
		})
	case rate > dropRateMonitor:
		vs.Add(model.Violation{
			Type:          "Moderate Call Drop Rate",
			Count:         int(totalDrops),
			Description:   fmt.Sprintf("%d call drops (%.2f%% rate) - acceptable but monitor", int(totalDrops), rate),
			Tier:          model.TierLow,
			PenaltyRange:  "No penalty - monitoring recommended",
			RegulationRef: regulationQoS,
		})
	}
}

// areaStats accumulates per-area call and drop totals.
type areaStats struct {
	name  string
	calls float64
	drops float64
}

func (a areaStats) rate() float64 {
	if a.calls == 0 {
		return 0
	}
	return a.drops / a.calls * 100
}

// detectAreaDropRate groups records by service area and flags areas
// breaching or approaching the 2% benchmark.
func detectAreaDropRate(d *dataset.Dataset, vs *model.ViolationSet) {
	if !d.HasColumns(dataset.ColServiceArea, dataset.ColTotalCalls, dataset.ColCallDrops) {
		return
	}

	byArea := make(map[string]*areaStats)
	for row := range d.Rows {
		area, okA := d.String(row, dataset.ColServiceArea)
		total, okT := d.Float(row, dataset.ColTotalCalls)
		drops, okD := d.Float(row, dataset.ColCallDrops)
		if !okA || !okT || !okD {
			continue
		}
		st, ok := byArea[area]
		if !ok {
			st = &areaStats{name: area}
			byArea[area] = st
		}
		st.calls += total
		st.drops += drops
	}

	var violating, warning []*areaStats
	for _, st := range byArea {
		switch r := st.rate(); {
		case r > dropRateLimit:
			violating = append(violating, st)
		case r > dropRateWarn:
			warning = append(warning, st)
		}
	}

	if len(violating) > 0 {
		sort.Slice(violating, func(i, j int) bool { return violating[i].rate() > violating[j].rate() })
		worst := violating[0]
		tier := dropPenaltyTier(worst.rate())
		vs.Add(model.Violation{
			Type:  "TRAI Service Area Drop Rate Violation",
			Count: len(violating),
			Description: fmt.Sprintf("%d service areas exceed 2%% TRAI limit (worst: %s at %.2f%%)",
				len(violating), worst.name, worst.rate()),
			Tier:          model.TierHigh,
			PenaltyRange:  tier.Penalty,
			PenaltyDetail: "Area-specific violations: " + tier.Calculation,
			RegulationRef: regulationAreaQoS,
		})
	}

	if len(warning) > 0 {
		sort.Slice(warning, func(i, j int) bool { return warning[i].rate() > warning[j].rate() })
		names := make([]string, len(warning))
		for i, st := range warning {
			names[i] = fmt.Sprintf("%s (%.2f%%)", st.name, st.rate())
		}
		vs.Add(model.Violation{
			Type:  "Service Area Drop Rate Warning",
			Count: len(warning),
			Description: fmt.Sprintf("%d service areas near TRAI limit (1.5-2.0%% drop rate): %s",
				len(warning), strings.Join(names, ", ")),
			Tier:          model.TierMedium,
			PenaltyRange:  "₹50,000 - Monitoring required",
			RegulationRef: regulationMonitor,
		})
	}
}

// detectCustomerDropRate flags individual records whose own drop rate
// exceeds 20%, a service-quality signal rather than an aggregate breach.
func detectCustomerDropRate(d *dataset.Dataset, vs *model.ViolationSet) {
	if !d.HasColumns(dataset.ColCustomerID, dataset.ColTotalCalls, dataset.ColCallDrops) {
		return
	}

	var affected int
	var sample []map[string]any

	for row := range d.Rows {
		total, okT := d.Float(row, dataset.ColTotalCalls)
		drops, okD := d.Float(row, dataset.ColCallDrops)
		if !okT || !okD || total == 0 {
			continue
		}
		rate := drops / total * 100
		if rate > customerDropRate {
			affected++
			if len(sample) < evidenceSampleSize {
				rec := d.Record(row, dataset.ColCustomerID, dataset.ColServiceArea)
				rec["customer_drop_rate"] = fmt.Sprintf("%.2f", rate)
				sample = append(sample, rec)
			}
		}
	}

	if affected == 0 {
		return
	}

	vs.Add(model.Violation{
		Type:          "Individual Customer Drop Issues",
		Count:         affected,
		Description:   fmt.Sprintf("%d customers with >20%% individual drop rates", affected),
		Tier:          model.TierMedium,
		PenaltyRange:  "Service quality investigation required",
		RegulationRef: regulationCustomer,
		Evidence:      sample,
	})
}

// detectDurationDropProxy treats calls under 3 seconds as probable
// drops. It only runs when the explicit drop counters are absent, as a
// fallback signal.
func detectDurationDropProxy(d *dataset.Dataset, vs *model.ViolationSet) {
	if !d.HasColumns(dataset.ColCallDuration) {
		return
	}
	if d.HasColumns(dataset.ColTotalCalls, dataset.ColCallDrops) {
		return
	}

	var probable, counted int
	for row := range d.Rows {
		dur, ok := d.Float(row, dataset.ColCallDuration)
		if !ok {
			continue
		}
		counted++
		if dur < shortCallSecs {
			probable++
		}
	}
	if counted == 0 {
		return
	}

	rate := float64(probable) / float64(counted) * 100
	if rate <= dropRateLimit {
		return
	}

	tier := dropPenaltyTier(rate)
	vs.Add(model.Violation{
		Type:          "Duration-based Call Drop Detection",
		Count:         probable,
		Description:   fmt.Sprintf("%d calls <3 seconds (%.2f%% rate)", probable, rate),
		Tier:          model.TierHigh,
		PenaltyRange:  tier.Penalty,
		PenaltyDetail: tier.Calculation,
		RegulationRef: regulationQoS,
	})
}

// detectExcessiveDuration flags calls running past one hour.
func detectExcessiveDuration(d *dataset.Dataset, vs *model.ViolationSet) {
	if !d.HasColumns(dataset.ColCallDuration) {
		return
	}

	var long int
	var maxDur float64
	var evidence []map[string]any
	for row := range d.Rows {
		dur, ok := d.Float(row, dataset.ColCallDuration)
		if !ok || dur <= longCallSecs {
			continue
		}
		long++
		if dur > maxDur {
			maxDur = dur
		}
		if len(evidence) < evidenceSampleSize {
			evidence = append(evidence, d.Record(row))
		}
	}
	if long == 0 {
		return
	}

	vs.Add(model.Violation{
		Type:          "Excessive Call Duration",
		Count:         long,
		Description:   fmt.Sprintf("%d calls exceed 1 hour duration (longest %.0fs)", long, maxDur),
		Tier:          model.TierHigh,
		PenaltyRange:  "₹1-2 lakh for service quality issues",
		RegulationRef: regulationQoS,
		Evidence:      evidence,
	})
}

// detectHighFrequencyCallers flags originating numbers with more than
// 100 calls in the dataset.
func detectHighFrequencyCallers(d *dataset.Dataset, vs *model.ViolationSet) {
	if !d.HasColumns(dataset.ColCallerNumber) {
		return
	}

	freq := make(map[string]int)
	for row := range d.Rows {
		num, ok := d.String(row, dataset.ColCallerNumber)
		if !ok {
			continue
		}
		freq[num]++
	}

	var offenders int
	topCaller, topCalls := "", 0
	for num, n := range freq {
		if n > highFreqCalls {
			offenders++
			if n > topCalls {
				topCaller, topCalls = num, n
			}
		}
	}
	if offenders == 0 {
		return
	}

	vs.Add(model.Violation{
		Type:  "High Frequency Calling",
		Count: offenders,
		Description: fmt.Sprintf("%d numbers made >100 calls (top: %s with %d calls)",
			offenders, topCaller, topCalls),
		Tier: model.TierMedium,
	})
}

// detectOffHours flags calls outside the 8 AM - 10 PM window. Rows with
// unparseable timestamps are skipped individually.
func detectOffHours(d *dataset.Dataset, vs *model.ViolationSet) {
	if !d.HasColumns(dataset.ColCallTime) {
		return
	}

	var offHours, parsed int
	for row := range d.Rows {
		t, ok := d.Time(row, dataset.ColCallTime)
		if !ok {
			continue
		}
		parsed++
		if h := t.Hour(); h < businessOpenHr || h > businessCloseHr {
			offHours++
		}
	}
	if offHours == 0 || d.Len() == 0 {
		return
	}

	pct := float64(offHours) / float64(d.Len()) * 100
	vs.Add(model.Violation{
		Type:  "Off-Hours Calling",
		Count: offHours,
		Description: fmt.Sprintf("%d calls made outside business hours (8 AM - 10 PM), %.1f%% of total",
			offHours, pct),
		Tier: model.TierLow,
	})
}

// detectMissingData reports null cells across the dataset as a data
// quality finding.
func detectMissingData(d *dataset.Dataset, vs *model.ViolationSet) {
	missing := d.MissingCounts()
	if len(missing) == 0 {
		return
	}

	total := 0
	cols := make([]string, 0, len(missing))
	for c := range missing {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		total += missing[c]
		parts = append(parts, fmt.Sprintf("%s: %d", c, missing[c]))
	}

	vs.Add(model.Violation{
		Type:        "Data Quality Issues",
		Count:       total,
		Description: fmt.Sprintf("%d missing data points found (%s)", total, strings.Join(parts, ", ")),
		Tier:        model.TierLow,
	})
}
