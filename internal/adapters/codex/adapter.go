// Package codex adapts a local Codex CLI installation: the ~/.codex
// data directory with its aggregate session index when present and the
// per-session rollout logs under sessions/ otherwise.
package codex

import (
	"context"

	"github.com/janekbaraniewski/agentcost/internal/adapters/adapterbase"
	"github.com/janekbaraniewski/agentcost/internal/core"
	"github.com/janekbaraniewski/agentcost/internal/detect"
	"github.com/janekbaraniewski/agentcost/internal/pricing"
	"github.com/janekbaraniewski/agentcost/internal/scan"
)

const binaryName = "codex"

type Config struct {
	DataDir string
	Repo    core.ModelRepository
	Windows scan.Windows
	Sink    core.EventSink
}

type Adapter struct {
	*adapterbase.Base
	*adapterbase.Queries
	inst detect.Installation
}

var _ core.Adapter = (*Adapter)(nil)

func New(cfg Config) *Adapter {
	candidates := detect.HomeDirCandidates("codex")
	if cfg.DataDir != "" {
		candidates = []string{cfg.DataDir}
	}
	inst := detect.Find(candidates, binaryName)

	windows := cfg.Windows
	if windows.Activity == 0 {
		windows = scan.DefaultWindows()
	}

	chain := scan.Chain{
		Tool: core.ToolCodex,
		Strategies: []scan.Strategy{
			aggregateStrategy(),
			rolloutLogStrategy(),
		},
	}

	table := openAITable()
	var coster adapterbase.Coster = table
	if cfg.Repo != nil {
		coster = &pricing.Hybrid{Table: table, Repo: cfg.Repo}
	}

	models := make([]string, 0, len(table.Rates))
	for name := range table.Rates {
		models = append(models, name)
	}

	return &Adapter{
		Base: adapterbase.New(core.ToolCodex, "Codex CLI", func() bool {
			return detect.Find(candidates, binaryName).Found()
		}),
		Queries: adapterbase.NewQueries(
			core.ToolCodex,
			scan.NewCache(chain, []string{inst.ConfigDir}),
			coster,
			windows,
			models,
			cfg.Sink,
		),
		inst: inst,
	}
}

func (a *Adapter) DetectVersion(ctx context.Context) string {
	bin := a.inst.BinaryPath
	if bin == "" {
		bin = binaryName
	}
	return detect.DetectVersion(ctx, bin)
}

// openAITable holds USD-per-million-token rates for the model families
// Codex sessions report. Cached input reads are billed at a tenth of the
// input rate.
func openAITable() *pricing.Table {
	return &pricing.Table{
		Provider:     "openai",
		Scale:        pricing.PerMillion,
		DefaultModel: "gpt-5",
		Rates: map[string]pricing.Rate{
			"gpt-5":       {Input: 1.25, Output: 10.00, CacheRead: 0.125},
			"gpt-5-mini":  {Input: 0.25, Output: 2.00, CacheRead: 0.025},
			"gpt-5-nano":  {Input: 0.05, Output: 0.40, CacheRead: 0.005},
			"gpt-4o":      {Input: 2.50, Output: 10.00, CacheRead: 1.25},
			"gpt-4o-mini": {Input: 0.15, Output: 0.60, CacheRead: 0.075},
			"o3":          {Input: 2.00, Output: 8.00, CacheRead: 0.50},
			"o4-mini":     {Input: 1.10, Output: 4.40, CacheRead: 0.275},
		},
	}
}
