// Package claudecode adapts a local Claude Code installation: the
// ~/.claude data directory, its aggregate session file when present and
// its per-project JSONL conversation logs otherwise.
package claudecode

import (
	"context"

	"github.com/janekbaraniewski/agentcost/internal/adapters/adapterbase"
	"github.com/janekbaraniewski/agentcost/internal/core"
	"github.com/janekbaraniewski/agentcost/internal/detect"
	"github.com/janekbaraniewski/agentcost/internal/pricing"
	"github.com/janekbaraniewski/agentcost/internal/scan"
)

const binaryName = "claude"

type Config struct {
	DataDir string // overrides config-dir discovery
	Repo    core.ModelRepository
	Windows scan.Windows // zero value means defaults
	Sink    core.EventSink
}

type Adapter struct {
	*adapterbase.Base
	*adapterbase.Queries
	inst detect.Installation
}

var _ core.Adapter = (*Adapter)(nil)

func New(cfg Config) *Adapter {
	candidates := detect.HomeDirCandidates("claude")
	if cfg.DataDir != "" {
		candidates = []string{cfg.DataDir}
	}
	inst := detect.Find(candidates, binaryName)

	windows := cfg.Windows
	if windows.Activity == 0 {
		windows = scan.DefaultWindows()
	}

	chain := scan.Chain{
		Tool: core.ToolClaudeCode,
		Strategies: []scan.Strategy{
			aggregateStrategy(),
			eventLogStrategy(),
		},
	}

	table := anthropicTable()
	var coster adapterbase.Coster = table
	if cfg.Repo != nil {
		coster = &pricing.Hybrid{Table: table, Repo: cfg.Repo}
	}

	return &Adapter{
		Base: adapterbase.New(core.ToolClaudeCode, "Claude Code", func() bool {
			return detect.Find(candidates, binaryName).Found()
		}),
		Queries: adapterbase.NewQueries(
			core.ToolClaudeCode,
			scan.NewCache(chain, []string{inst.ConfigDir}),
			coster,
			windows,
			tableModels(table),
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

func tableModels(t *pricing.Table) []string {
	models := make([]string, 0, len(t.Rates))
	for name := range t.Rates {
		models = append(models, name)
	}
	return models
}
