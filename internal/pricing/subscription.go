package pricing

import "github.com/janekbaraniewski/agentcost/internal/core"

// SubscriptionPlan models tools billed as a flat monthly fee with an
// included request quota. Usage beyond the quota is charged pro rata
// from the per-token table.
type SubscriptionPlan struct {
	Name             string
	MonthlyUSD       float64
	IncludedRequests int
	Overage          *Table
}

// MonthlyCost returns the flat fee plus the overage charge for the
// portion of usage attributable to requests above the included quota.
func (p SubscriptionPlan) MonthlyCost(requests int, model string, u core.UsageTotals) float64 {
	cost := p.MonthlyUSD
	if requests <= p.IncludedRequests || p.Overage == nil || requests == 0 {
		return cost
	}

	overageShare := float64(requests-p.IncludedRequests) / float64(requests)
	overageUsage := core.UsageTotals{
		InputTokens:      int64(float64(u.InputTokens) * overageShare),
		OutputTokens:     int64(float64(u.OutputTokens) * overageShare),
		CacheReadTokens:  int64(float64(u.CacheReadTokens) * overageShare),
		CacheWriteTokens: int64(float64(u.CacheWriteTokens) * overageShare),
	}
	return cost + p.Overage.Cost(model, overageUsage)
}
