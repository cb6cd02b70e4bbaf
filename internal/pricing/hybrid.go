package pricing

import (
	"context"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

// Hybrid consults the persisted model repository before the static table,
// so freshly synced prices override compiled-in ones. Repository misses
// and errors silently fall through to the static table.
type Hybrid struct {
	Table *Table
	Repo  core.ModelRepository
}

const repoLookupTimeout = 500 * time.Millisecond

func (h *Hybrid) Cost(model string, u core.UsageTotals) float64 {
	if h.Repo != nil {
		if m, ok := h.lookup(model); ok {
			return CostFromModelInfo(m, u)
		}
	}
	return h.Table.Cost(model, u)
}

func (h *Hybrid) lookup(model string) (core.ModelInfo, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), repoLookupTimeout)
	defer cancel()

	for _, name := range []string{model, NormalizeModelName(model)} {
		if name == "" {
			continue
		}
		m, ok, err := h.Repo.Lookup(ctx, h.Table.Provider, name)
		if err == nil && ok {
			return m, true
		}
	}
	return core.ModelInfo{}, false
}
