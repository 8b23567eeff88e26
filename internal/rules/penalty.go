package rules

import "fmt"

// penaltyTier is the graded TRAI penalty band for a drop-rate breach.
type penaltyTier struct {
	Penalty     string
	Calculation string
}

// dropPenaltyTier grades a drop rate already past the 2% limit into its
// penalty band. Boundaries are strict greater-than, matching the
// regulatory benchmark semantics.
func dropPenaltyTier(rate float64) penaltyTier {
	switch {
	case rate > 5.0:
		return penaltyTier{
			Penalty:     "₹5-10 lakh (Severe violation)",
			Calculation: fmt.Sprintf("Drop rate %.2f%% - Tier 4 penalty (>5%%)", rate),
		}
	case rate > 4.0:
		return penaltyTier{
			Penalty:     "₹2-5 lakh (High violation)",
			Calculation: fmt.Sprintf("Drop rate %.2f%% - Tier 3 penalty (4-5%%)", rate),
		}
	case rate > 3.0:
		return penaltyTier{
			Penalty:     "₹1-2 lakh (Medium violation)",
			Calculation: fmt.Sprintf("Drop rate %.2f%% - Tier 2 penalty (3-4%%)", rate),
		}
	default: // 2-3%
		return penaltyTier{
			Penalty:     "₹50,000-1 lakh (Base violation)",
			Calculation: fmt.Sprintf("Drop rate %.2f%% - Tier 1 penalty (2-3%%)", rate),
		}
	}
}
