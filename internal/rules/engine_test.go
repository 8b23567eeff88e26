package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/compliance-cli/internal/dataset"
	"github.com/sells-group/compliance-cli/internal/model"
)

func dropDataset(rows [][]string) *dataset.Dataset {
	return dataset.New(
		[]string{"customer_id", "service_area", "tot_call_cnt_d", "call_drop_cnt_d"},
		rows,
	)
}

func TestScanAggregateDropRateHigh(t *testing.T) {
	// 30 drops over 1000 calls = 3.00%, over the 2% limit.
	d := dropDataset([][]string{
		{"C1", "Mumbai", "600", "20"},
		{"C2", "Delhi", "400", "10"},
	})

	vs := NewEngine(DefaultConfig()).Scan(d)

	require.NotEmpty(t, vs.High)
	v := vs.High[0]
	assert.Equal(t, "TRAI Call Drop Rate Violation", v.Type)
	assert.Equal(t, 30, v.Count)
	assert.Contains(t, v.Description, "3.00%")
	assert.Equal(t, "₹1-2 lakh (Medium violation)", v.PenaltyRange)
	assert.Equal(t, "TRAI QoS Standards 2024", v.RegulationRef)
	assert.NotEmpty(t, v.Evidence)
	assert.True(t, vs.Summary.DropViolationSeen)
}

func TestScanAggregateDropRateAtLimitIsNotHigh(t *testing.T) {
	// Exactly 2.00% is at the benchmark, not over it.
	d := dropDataset([][]string{
		{"C1", "Mumbai", "500", "10"},
		{"C2", "Delhi", "500", "10"},
	})

	vs := NewEngine(DefaultConfig()).Scan(d)

	assert.Empty(t, vs.High)
	require.NotEmpty(t, vs.Medium)
	assert.Equal(t, "High Call Drop Rate (Warning)", vs.Medium[0].Type)
}

func TestScanZeroTotalCallsIsClean(t *testing.T) {
	d := dropDataset([][]string{
		{"C1", "Mumbai", "0", "0"},
		{"C2", "Delhi", "0", "0"},
	})

	vs := NewEngine(DefaultConfig()).Scan(d)

	assert.Empty(t, vs.High)
	assert.Empty(t, vs.Medium)
	assert.Equal(t, 100, vs.Summary.ComplianceScore)
	assert.Zero(t, vs.Summary.EstimatedPenalty)
}

func TestScanAreaDropRate(t *testing.T) {
	// Mumbai: 30/1000 = 3%, Delhi: 5/1000 = 0.5%.
	d := dropDataset([][]string{
		{"C1", "Mumbai", "500", "15"},
		{"C2", "Mumbai", "500", "15"},
		{"C3", "Delhi", "1000", "5"},
	})

	vs := NewEngine(DefaultConfig()).Scan(d)

	var area *model.Violation
	for i := range vs.High {
		if vs.High[i].Type == "TRAI Service Area Drop Rate Violation" {
			area = &vs.High[i]
		}
	}
	require.NotNil(t, area)
	assert.Equal(t, 1, area.Count)
	assert.Contains(t, area.Description, "Mumbai")
	assert.Contains(t, area.Description, "3.00%")
}

func TestScanCustomerDropRate(t *testing.T) {
	// C1 drops 25% of its own calls but the aggregate stays under 1%.
	d := dropDataset([][]string{
		{"C1", "Mumbai", "4", "1"},
		{"C2", "Delhi", "996", "0"},
	})

	vs := NewEngine(DefaultConfig()).Scan(d)

	require.NotEmpty(t, vs.Medium)
	v := vs.Medium[0]
	assert.Equal(t, "Individual Customer Drop Issues", v.Type)
	assert.Equal(t, 1, v.Count)
	assert.Equal(t, "TRAI Customer Protection Standards", v.RegulationRef)
}

func TestScanDurationProxyOnlyWithoutDropColumns(t *testing.T) {
	// 1 call out of 10 under 3 seconds = 10%.
	rows := make([][]string, 10)
	for i := range rows {
		rows[i] = []string{"C1", "120"}
	}
	rows[0] = []string{"C1", "1"}

	d := dataset.New([]string{"customer_id", "call_duration"}, rows)
	vs := NewEngine(DefaultConfig()).Scan(d)

	require.NotEmpty(t, vs.High)
	assert.Equal(t, "Duration-based Call Drop Detection", vs.High[0].Type)
	assert.Equal(t, 1, vs.High[0].Count)
}

func TestScanDurationProxySkippedWithDropColumns(t *testing.T) {
	d := dataset.New(
		[]string{"customer_id", "tot_call_cnt_d", "call_drop_cnt_d", "call_duration"},
		[][]string{
			{"C1", "100", "0", "1"},
			{"C2", "100", "0", "2"},
		},
	)

	vs := NewEngine(DefaultConfig()).Scan(d)

	for _, v := range vs.All() {
		assert.NotEqual(t, "Duration-based Call Drop Detection", v.Type)
	}
}

func TestScanExcessiveDuration(t *testing.T) {
	d := dataset.New([]string{"customer_id", "call_duration"}, [][]string{
		{"C1", "7200"},
		{"C2", "60"},
	})

	vs := NewEngine(DefaultConfig()).Scan(d)

	require.NotEmpty(t, vs.High)
	v := vs.High[0]
	assert.Equal(t, "Excessive Call Duration", v.Type)
	assert.Contains(t, v.Description, "longest 7200s")
}

func TestScanHighFrequencyCaller(t *testing.T) {
	rows := make([][]string, 101)
	for i := range rows {
		rows[i] = []string{"9820012345"}
	}
	d := dataset.New([]string{"caller_number"}, rows)

	vs := NewEngine(DefaultConfig()).Scan(d)

	require.NotEmpty(t, vs.Medium)
	v := vs.Medium[0]
	assert.Equal(t, "High Frequency Calling", v.Type)
	assert.Contains(t, v.Description, "9820012345")
}

func TestScanOffHours(t *testing.T) {
	d := dataset.New([]string{"customer_id", "call_time"}, [][]string{
		{"C1", "2024-03-01 23:30:00"}, // off hours
		{"C2", "2024-03-01 07:15:00"}, // off hours
		{"C3", "2024-03-01 12:00:00"},
		{"C4", "not-a-time"}, // skipped
	})

	vs := NewEngine(DefaultConfig()).Scan(d)

	require.NotEmpty(t, vs.Low)
	v := vs.Low[0]
	assert.Equal(t, "Off-Hours Calling", v.Type)
	assert.Equal(t, 2, v.Count)
}

func TestScanMissingData(t *testing.T) {
	d := dataset.New([]string{"customer_id", "service_area"}, [][]string{
		{"C1", "Mumbai"},
		{"C2", ""},
	})

	vs := NewEngine(DefaultConfig()).Scan(d)

	require.NotEmpty(t, vs.Low)
	v := vs.Low[0]
	assert.Equal(t, "Data Quality Issues", v.Type)
	assert.Equal(t, 1, v.Count)
	assert.Contains(t, v.Description, "service_area: 1")
}

func TestSummarizeScoreAndPenalty(t *testing.T) {
	e := NewEngine(DefaultConfig())
	d := dataset.New([]string{"customer_id"}, [][]string{{"C1"}})

	vs := &model.ViolationSet{}
	vs.Add(model.Violation{Type: "A", Tier: model.TierHigh})
	vs.Add(model.Violation{Type: "B", Tier: model.TierMedium})
	vs.Add(model.Violation{Type: "C", Tier: model.TierMedium})

	s := e.summarize(d, vs)
	assert.Equal(t, 100-40-20-20, s.ComplianceScore)
	assert.Equal(t, int64(300000+125000+125000), s.EstimatedPenalty)
	assert.False(t, s.DropViolationSeen)
}

func TestSummarizeScoreClampsAtZero(t *testing.T) {
	e := NewEngine(DefaultConfig())
	d := dataset.New([]string{"customer_id"}, nil)

	vs := &model.ViolationSet{}
	for i := 0; i < 5; i++ {
		vs.Add(model.Violation{Type: "X Drop Y", Tier: model.TierHigh})
	}

	s := e.summarize(d, vs)
	assert.Equal(t, 0, s.ComplianceScore)
	assert.True(t, s.DropViolationSeen)
}

func TestRunSafelyIsolatesPanics(t *testing.T) {
	e := NewEngine(DefaultConfig())
	d := dataset.New([]string{"customer_id"}, nil)
	vs := &model.ViolationSet{}

	boom := detector{name: "boom", run: func(*dataset.Dataset, *model.ViolationSet) {
		panic("detector bug")
	}}

	assert.NotPanics(t, func() { e.runSafely(boom, d, vs) })
}

func TestDropPenaltyTiers(t *testing.T) {
	tests := []struct {
		rate    float64
		penalty string
	}{
		{2.5, "₹50,000-1 lakh (Base violation)"},
		{3.0, "₹50,000-1 lakh (Base violation)"},
		{3.5, "₹1-2 lakh (Medium violation)"},
		{4.5, "₹2-5 lakh (High violation)"},
		{5.0, "₹2-5 lakh (High violation)"},
		{7.0, "₹5-10 lakh (Severe violation)"},
	}

	for _, tt := range tests {
		got := dropPenaltyTier(tt.rate)
		assert.Equal(t, tt.penalty, got.Penalty, "rate %.2f", tt.rate)
		assert.Contains(t, got.Calculation, "Drop rate")
	}
}
