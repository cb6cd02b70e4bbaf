// Package cursor adapts a local Cursor IDE installation. Cursor keeps
// its session state in the state.vscdb SQLite store under the OS
// application-support directory; the store is opened read-only and an
// absent or locked database simply yields no sessions.
package cursor

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/adapters/adapterbase"
	"github.com/janekbaraniewski/agentcost/internal/core"
	"github.com/janekbaraniewski/agentcost/internal/detect"
	"github.com/janekbaraniewski/agentcost/internal/pricing"
	"github.com/janekbaraniewski/agentcost/internal/scan"
)

const binaryName = "cursor"

type Config struct {
	DataDir string
	Windows scan.Windows
	Sink    core.EventSink
}

type Adapter struct {
	*adapterbase.Base
	*adapterbase.Queries
	inst detect.Installation
	plan pricing.SubscriptionPlan
}

var _ core.Adapter = (*Adapter)(nil)

func New(cfg Config) *Adapter {
	candidates := detect.AppSupportDirCandidates("Cursor")
	if cfg.DataDir != "" {
		candidates = []string{cfg.DataDir}
	}
	inst := detect.Find(candidates, binaryName)

	windows := cfg.Windows
	if windows.Activity == 0 {
		windows = scan.DefaultWindows()
	}

	chain := scan.Chain{
		Tool:       core.ToolCursor,
		Strategies: []scan.Strategy{stateDBStrategy()},
	}

	plan := proPlan()

	return &Adapter{
		Base: adapterbase.New(core.ToolCursor, "Cursor", func() bool {
			return detect.Find(candidates, binaryName).Found()
		}),
		Queries: adapterbase.NewQueries(
			core.ToolCursor,
			scan.NewCache(chain, []string{inst.ConfigDir}),
			plan.Overage,
			windows,
			[]string{"cursor-included"},
			cfg.Sink,
		),
		inst: inst,
		plan: plan,
	}
}

func (a *Adapter) DetectVersion(ctx context.Context) string {
	bin := a.inst.BinaryPath
	if bin == "" {
		bin = binaryName
	}
	return detect.DetectVersion(ctx, bin)
}

// TotalCost shadows the per-token query: Cursor bills a flat monthly
// subscription with an included request quota, so cost is the plan fee
// plus pro-rated overage.
func (a *Adapter) TotalCost(since time.Time) (float64, error) {
	sessions, err := a.Sessions()
	if err != nil {
		return 0, err
	}

	var (
		requests int
		usage    core.UsageTotals
	)
	for _, s := range sessions {
		if !since.IsZero() && s.LastActivityAt().Before(since) {
			continue
		}
		requests += s.Usage.Messages
		usage.Add(s.Usage)
	}
	if requests == 0 && usage.TotalTokens() == 0 {
		return 0, nil
	}
	return a.plan.MonthlyCost(requests, usage.Model, usage), nil
}

// proPlan mirrors Cursor's paid tier: a flat fee covering the included
// request quota, with overage charged at frontier-model token rates.
func proPlan() pricing.SubscriptionPlan {
	return pricing.SubscriptionPlan{
		Name:             "pro",
		MonthlyUSD:       20.0,
		IncludedRequests: 500,
		Overage: &pricing.Table{
			Provider:     "cursor",
			Scale:        pricing.PerMillion,
			DefaultModel: "claude-sonnet-4-5",
			Rates: map[string]pricing.Rate{
				"claude-sonnet-4-5": {Input: 3.00, Output: 15.00},
				"claude-opus-4-5":   {Input: 5.00, Output: 25.00},
				"gpt-5":             {Input: 1.25, Output: 10.00},
				"gemini-2.5-pro":    {Input: 1.25, Output: 10.00},
			},
		},
	}
}

// stateDBPath resolves the global storage database inside the config
// dir, tolerating both the full app-support layout and a bare dir used
// in tests.
func stateDBPath(dir string) string {
	nested := filepath.Join(dir, "User", "globalStorage", "state.vscdb")
	if _, err := os.Stat(nested); err == nil {
		return nested
	}
	return filepath.Join(dir, "state.vscdb")
}
