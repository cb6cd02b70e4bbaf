package main

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/agentcost/internal/adapters/claudecode"
	"github.com/janekbaraniewski/agentcost/internal/adapters/codex"
	"github.com/janekbaraniewski/agentcost/internal/adapters/cursor"
	"github.com/janekbaraniewski/agentcost/internal/adapters/geminicli"
	"github.com/janekbaraniewski/agentcost/internal/config"
	"github.com/janekbaraniewski/agentcost/internal/core"
	"github.com/janekbaraniewski/agentcost/internal/modelsync"
	"github.com/janekbaraniewski/agentcost/internal/scan"
)

// buildAdapters constructs one adapter per supported tool. The shared
// model repository is optional; without it adapters price from their
// static tables.
func buildAdapters(cfg config.Config, repo core.ModelRepository) []core.Adapter {
	windows := scan.Windows{Activity: cfg.ActivityWindow(), Stale: cfg.StaleWindow()}

	return []core.Adapter{
		claudecode.New(claudecode.Config{
			DataDir: cfg.DataDir(core.ToolClaudeCode),
			Repo:    repo,
			Windows: windows,
		}),
		codex.New(codex.Config{
			DataDir: cfg.DataDir(core.ToolCodex),
			Repo:    repo,
			Windows: windows,
		}),
		geminicli.New(geminicli.Config{
			DataDir: cfg.DataDir(core.ToolGeminiCLI),
			Repo:    repo,
			Windows: windows,
		}),
		cursor.New(cursor.Config{
			DataDir: cfg.DataDir(core.ToolCursor),
			Windows: windows,
		}),
	}
}

// installedAdapters narrows to tools actually present on this machine;
// with --tool set, to that single tool.
func installedAdapters(cfg config.Config, repo core.ModelRepository, tool string) ([]core.Adapter, error) {
	all := buildAdapters(cfg, repo)

	if tool != "" {
		match, found := lo.Find(all, func(a core.Adapter) bool {
			return string(a.Tool()) == tool
		})
		if !found {
			return nil, fmt.Errorf("unknown tool %q", tool)
		}
		return []core.Adapter{match}, nil
	}

	return lo.Filter(all, func(a core.Adapter, _ int) bool {
		return a.IsInstalled()
	}), nil
}

// buildProviders resolves the enabled sync providers from config, in
// registration order.
func buildProviders(cfg config.Config) []core.SyncProvider {
	available := map[string]core.SyncProvider{
		"anthropic":  modelsync.NewAnthropic(),
		"openrouter": modelsync.NewOpenRouter(),
		"litellm":    modelsync.NewLiteLLM(),
	}

	var providers []core.SyncProvider
	for _, name := range cfg.Sync.EnabledProviders {
		if p, ok := available[name]; ok {
			providers = append(providers, p)
		}
	}
	return providers
}

func openRepository() (*modelsync.SQLiteRepository, error) {
	return modelsync.OpenRepository(config.RepositoryPath())
}

// repoOrNil keeps a nil *SQLiteRepository from becoming a non-nil
// interface value.
func repoOrNil(r *modelsync.SQLiteRepository) core.ModelRepository {
	if r == nil {
		return nil
	}
	return r
}
