package claudecode

import "github.com/janekbaraniewski/agentcost/internal/pricing"

// anthropicTable holds USD-per-million-token rates for the Claude
// families, including the prompt-cache read/write rates Claude Code
// reports separately.
func anthropicTable() *pricing.Table {
	return &pricing.Table{
		Provider:     "anthropic",
		Scale:        pricing.PerMillion,
		DefaultModel: "claude-sonnet-4-5",
		Rates: map[string]pricing.Rate{
			"claude-opus-4-5":   {Input: 5.00, Output: 25.00, CacheRead: 0.50, CacheWrite: 6.25},
			"claude-opus-4-1":   {Input: 15.00, Output: 75.00, CacheRead: 1.50, CacheWrite: 18.75},
			"claude-sonnet-4-5": {Input: 3.00, Output: 15.00, CacheRead: 0.30, CacheWrite: 3.75},
			"claude-sonnet-4":   {Input: 3.00, Output: 15.00, CacheRead: 0.30, CacheWrite: 3.75},
			"claude-haiku-4-5":  {Input: 1.00, Output: 5.00, CacheRead: 0.10, CacheWrite: 1.25},
			"claude-3-opus":     {Input: 15.00, Output: 75.00, CacheRead: 1.50, CacheWrite: 18.75},
			"claude-3-5-sonnet": {Input: 3.00, Output: 15.00, CacheRead: 0.30, CacheWrite: 3.75},
			"claude-3-5-haiku":  {Input: 0.80, Output: 4.00, CacheRead: 0.08, CacheWrite: 1.00},
		},
	}
}
