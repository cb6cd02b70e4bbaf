package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

func testTable() *Table {
	return &Table{
		Provider:     "anthropic",
		Scale:        PerMillion,
		DefaultModel: "claude-sonnet-4-5",
		Rates: map[string]Rate{
			"claude-3-opus":     {Input: 15.0, Output: 75.0, CacheRead: 1.50, CacheWrite: 18.75},
			"claude-opus-4-5":   {Input: 5.0, Output: 25.0, CacheRead: 0.50, CacheWrite: 6.25},
			"claude-sonnet-4-5": {Input: 3.0, Output: 15.0, CacheRead: 0.30, CacheWrite: 3.75},
			"claude-haiku-4-5":  {Input: 1.0, Output: 5.0, CacheRead: 0.10, CacheWrite: 1.25},
		},
	}
}

func TestResolve(t *testing.T) {
	table := testTable()

	tests := []struct {
		name  string
		model string
		want  string
	}{
		{"exact", "claude-3-opus", "claude-3-opus"},
		{"case insensitive", "Claude-3-Opus", "claude-3-opus"},
		{"provider prefix stripped", "anthropic/claude-3-opus", "claude-3-opus"},
		{"date suffix via substring", "claude-opus-4-5-20251101", "claude-opus-4-5"},
		{"abbreviated query", "sonnet-4-5", "claude-sonnet-4-5"},
		{"family normalization", "claude-haiku-4-5-latest", "claude-haiku-4-5"},
		{"unknown falls back to default", "gpt-5", "claude-sonnet-4-5"},
		{"empty falls back to default", "", "claude-sonnet-4-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, _ := table.Resolve(tt.model)
			if key != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.model, key, tt.want)
			}
		})
	}
}

func TestCostFormula(t *testing.T) {
	table := testTable()
	u := core.UsageTotals{InputTokens: 1_000_000, OutputTokens: 500_000}

	got := table.Cost("claude-3-opus", u)
	want := 15.0 + 0.5*75.0
	if got != want {
		t.Errorf("Cost = %v, want %v", got, want)
	}

	// Cache kinds contribute when present.
	u.CacheReadTokens = 2_000_000
	got = table.Cost("claude-3-opus", u)
	want += 2 * 1.50
	if got != want {
		t.Errorf("Cost with cache reads = %v, want %v", got, want)
	}
}

func TestCostMonotonic(t *testing.T) {
	table := testTable()
	base := table.Cost("claude-3-opus", core.UsageTotals{InputTokens: 100, OutputTokens: 100})

	moreIn := table.Cost("claude-3-opus", core.UsageTotals{InputTokens: 200, OutputTokens: 100})
	moreOut := table.Cost("claude-3-opus", core.UsageTotals{InputTokens: 100, OutputTokens: 200})

	if moreIn < base || moreOut < base {
		t.Errorf("cost not monotonic: base=%v moreIn=%v moreOut=%v", base, moreIn, moreOut)
	}
}

func TestUnknownModelNeverErrors(t *testing.T) {
	table := testTable()
	for _, model := range []string{"", "totally-made-up", "vendor/x/y", "🤖"} {
		if cost := table.Cost(model, core.UsageTotals{InputTokens: 1000, OutputTokens: 1000}); cost < 0 {
			t.Errorf("Cost(%q) = %v, want >= 0", model, cost)
		}
	}
}

func TestCacheSavings(t *testing.T) {
	table := testTable()
	got := table.CacheSavings("claude-sonnet-4-5", 1_000_000)
	want := 3.0 - 0.30
	if got != want {
		t.Errorf("CacheSavings = %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	table := testTable()
	if !table.Validate() {
		t.Error("well-formed table should validate")
	}

	table.Rates["broken"] = Rate{Input: -1}
	if table.Validate() {
		t.Error("negative rate should fail validation")
	}
}

type fakeRepo struct {
	models map[string]core.ModelInfo
}

func (f *fakeRepo) Upsert(_ context.Context, m core.ModelInfo) error {
	f.models[m.Key()] = m
	return nil
}

func (f *fakeRepo) Lookup(_ context.Context, provider, model string) (core.ModelInfo, bool, error) {
	m, ok := f.models[core.ModelInfo{Provider: provider, Model: model}.Key()]
	return m, ok, nil
}

func (f *fakeRepo) List(context.Context) ([]core.ModelInfo, error) { return nil, nil }

func TestHybridPrefersRepository(t *testing.T) {
	repo := &fakeRepo{models: map[string]core.ModelInfo{}}
	repo.models["anthropic/claude-3-opus"] = core.ModelInfo{
		Provider: "anthropic", Model: "claude-3-opus",
		InputPerMTok: 20.0, OutputPerMTok: 100.0,
		ContextWindow: 200_000, LastSynced: time.Now(),
	}

	h := &Hybrid{Table: testTable(), Repo: repo}
	u := core.UsageTotals{InputTokens: 1_000_000}

	if got := h.Cost("claude-3-opus", u); got != 20.0 {
		t.Errorf("hybrid cost = %v, want synced rate 20.0", got)
	}
	if got := h.Cost("claude-haiku-4-5", u); got != 1.0 {
		t.Errorf("hybrid fallback cost = %v, want static rate 1.0", got)
	}
}

func TestSubscriptionPlan(t *testing.T) {
	plan := SubscriptionPlan{
		Name:             "pro",
		MonthlyUSD:       20.0,
		IncludedRequests: 500,
		Overage:          testTable(),
	}

	u := core.UsageTotals{InputTokens: 1_000_000, OutputTokens: 1_000_000}

	if got := plan.MonthlyCost(100, "claude-sonnet-4-5", u); got != 20.0 {
		t.Errorf("under quota cost = %v, want flat 20.0", got)
	}

	// 1000 requests: half the usage is overage.
	got := plan.MonthlyCost(1000, "claude-sonnet-4-5", u)
	want := 20.0 + (0.5*3.0 + 0.5*15.0)
	if got != want {
		t.Errorf("overage cost = %v, want %v", got, want)
	}
}
