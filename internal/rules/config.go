package rules

// Config holds the scoring weights and per-tier penalty averages used
// when aggregating findings. The regulatory thresholds themselves
// (2% drop rate, 3s drop proxy, and so on) are fixed business rules;
// the weights and penalty magnitudes are tunable.
type Config struct {
	HighWeight   int `yaml:"high_weight" mapstructure:"high_weight"`
	MediumWeight int `yaml:"medium_weight" mapstructure:"medium_weight"`
	LowWeight    int `yaml:"low_weight" mapstructure:"low_weight"`

	HighPenalty   int64 `yaml:"high_penalty" mapstructure:"high_penalty"`
	MediumPenalty int64 `yaml:"medium_penalty" mapstructure:"medium_penalty"`
	LowPenalty    int64 `yaml:"low_penalty" mapstructure:"low_penalty"`
}

// DefaultConfig returns the stock TRAI-derived weights and penalty
// averages.
func DefaultConfig() Config {
	return Config{
		HighWeight:    40,
		MediumWeight:  20,
		LowWeight:     10,
		HighPenalty:   300000,
		MediumPenalty: 125000,
		LowPenalty:    50000,
	}
}
