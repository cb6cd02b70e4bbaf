// Package geminicli adapts a local Gemini CLI installation: the
// ~/.gemini data directory with an aggregate sessions file when present,
// falling back to the single current-session state file the tool keeps
// while running.
package geminicli

import (
	"context"

	"github.com/janekbaraniewski/agentcost/internal/adapters/adapterbase"
	"github.com/janekbaraniewski/agentcost/internal/core"
	"github.com/janekbaraniewski/agentcost/internal/detect"
	"github.com/janekbaraniewski/agentcost/internal/pricing"
	"github.com/janekbaraniewski/agentcost/internal/scan"
)

const binaryName = "gemini"

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
	candidates := detect.HomeDirCandidates("gemini")
	if cfg.DataDir != "" {
		candidates = []string{cfg.DataDir}
	}
	inst := detect.Find(candidates, binaryName)

	windows := cfg.Windows
	if windows.Activity == 0 {
		windows = scan.DefaultWindows()
	}

	chain := scan.Chain{
		Tool: core.ToolGeminiCLI,
		Strategies: []scan.Strategy{
			aggregateStrategy(),
			stateFileStrategy(),
		},
	}

	table := googleTable()
	var coster adapterbase.Coster = table
	if cfg.Repo != nil {
		coster = &pricing.Hybrid{Table: table, Repo: cfg.Repo}
	}

	models := make([]string, 0, len(table.Rates))
	for name := range table.Rates {
		models = append(models, name)
	}

	return &Adapter{
		Base: adapterbase.New(core.ToolGeminiCLI, "Gemini CLI", func() bool {
			return detect.Find(candidates, binaryName).Found()
		}),
		Queries: adapterbase.NewQueries(
			core.ToolGeminiCLI,
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

func googleTable() *pricing.Table {
	return &pricing.Table{
		Provider:     "google",
		Scale:        pricing.PerMillion,
		DefaultModel: "gemini-2.5-pro",
		Rates: map[string]pricing.Rate{
			"gemini-2.5-pro":        {Input: 1.25, Output: 10.00, CacheRead: 0.31},
			"gemini-2.5-flash":      {Input: 0.30, Output: 2.50, CacheRead: 0.075},
			"gemini-2.5-flash-lite": {Input: 0.10, Output: 0.40, CacheRead: 0.025},
			"gemini-2.0-flash":      {Input: 0.10, Output: 0.40, CacheRead: 0.025},
		},
	}
}
