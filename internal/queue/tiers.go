package queue

import "strings"

// TierLimits is a subscription tier's application allowance.
type TierLimits struct {
	Daily  int
	Weekly int
}

// Zero allowance for the free tier: auto-apply is a paid feature.
var tierLimits = map[string]TierLimits{
	"free":    {Daily: 0, Weekly: 0},
	"plus":    {Daily: 5, Weekly: 20},
	"pro":     {Daily: 8, Weekly: 40},
	"premium": {Daily: 20, Weekly: 100},
}

// LimitsForTier resolves a tier name to its allowance. Unknown tiers fall
// back to the zero-allowance baseline.
func LimitsForTier(tier string) TierLimits {
	if l, ok := tierLimits[strings.ToLower(strings.TrimSpace(tier))]; ok {
		return l
	}
	return tierLimits["free"]
}
