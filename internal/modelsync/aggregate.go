// Package modelsync keeps the local model price table current: pluggable
// source providers fetch pricing, the aggregator merges them under a
// conflict policy, and the scheduler runs the whole pipeline in the
// background.
package modelsync

import (
	"log"
	"sort"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

// Deduplicate collapses duplicate model identities within one source,
// keeping the most recently synced entry per key.
func Deduplicate(models []core.ModelInfo) []core.ModelInfo {
	grouped := lo.GroupBy(models, func(m core.ModelInfo) string { return m.Key() })

	out := make([]core.ModelInfo, 0, len(grouped))
	for _, group := range grouped {
		best := lo.MaxBy(group, func(a, b core.ModelInfo) bool {
			return a.LastSynced.After(b.LastSynced)
		})
		out = append(out, best)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Prices above this are almost certainly a unit mixup in the source
// data; such entries are kept but flagged.
const suspiciousPerMTok = 1000.0

// FilterValid drops entries no cost calculation could use: empty
// identity or negative prices. Dropped entries are logged, not errors.
func FilterValid(source string, models []core.ModelInfo) []core.ModelInfo {
	valid := lo.Filter(models, func(m core.ModelInfo, _ int) bool {
		return m.Provider != "" && m.Model != "" && m.InputPerMTok >= 0 && m.OutputPerMTok >= 0
	})
	if dropped := len(models) - len(valid); dropped > 0 {
		log.Printf("[modelsync] %s: dropped %d invalid model entries", source, dropped)
	}
	for _, m := range valid {
		if m.InputPerMTok > suspiciousPerMTok || m.OutputPerMTok > suspiciousPerMTok {
			log.Printf("[modelsync] %s: suspicious rates for %s: %.2f/%.2f per MTok",
				source, m.Key(), m.InputPerMTok, m.OutputPerMTok)
		}
	}
	return valid
}

// Merge combines the model lists of several sources into one table.
// Sources are visited in registration order; when two sources report the
// same model identity the policy picks the winner, and on a tie the
// earlier-registered entry stays.
func Merge(sources []core.SourceModels, policy core.ConflictResolution) []core.ModelInfo {
	return lo.Map(mergeEntries(sources, policy), func(e mergeEntry, _ int) core.ModelInfo {
		return e.model
	})
}

func mergeEntries(sources []core.SourceModels, policy core.ConflictResolution) []mergeEntry {
	byKey := make(map[string]mergeEntry)

	for _, src := range sources {
		models := Deduplicate(FilterValid(src.Source, src.Models))
		for _, m := range models {
			candidate := mergeEntry{model: m, source: src.Source, priority: src.Priority, official: src.Official}
			existing, ok := byKey[m.Key()]
			if !ok || candidate.beats(existing, policy) {
				byKey[m.Key()] = candidate
			}
		}
	}

	merged := lo.Values(byKey)
	sort.Slice(merged, func(i, j int) bool { return merged[i].model.Key() < merged[j].model.Key() })
	return merged
}

type mergeEntry struct {
	model    core.ModelInfo
	source   string
	priority int
	official bool
}

// beats reports whether the candidate strictly wins over the existing
// entry under the policy. Equal entries never win, so first registration
// order breaks ties.
func (c mergeEntry) beats(e mergeEntry, policy core.ConflictResolution) bool {
	switch policy {
	case core.MostRecent:
		return c.model.LastSynced.After(e.model.LastSynced)
	case core.LowestPrice:
		return c.model.InputPerMTok+c.model.OutputPerMTok < e.model.InputPerMTok+e.model.OutputPerMTok
	case core.HighestContextWindow:
		return c.model.ContextWindow > e.model.ContextWindow
	default: // OfficialFirst
		if c.official != e.official {
			return c.official
		}
		return c.priority < e.priority
	}
}
