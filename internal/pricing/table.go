// Package pricing resolves free-form model names against rate tables and
// computes usage cost. Unknown model names never produce an error: the
// resolution chain always terminates in the table's default model so that
// every session yields a cost estimate.
package pricing

import (
	"log"
	"regexp"
	"strings"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

// Rate holds per-token-kind prices in the owning table's unit scale.
// Cache rates are zero for tools that do not distinguish them.
type Rate struct {
	Input      float64
	Output     float64
	CacheRead  float64
	CacheWrite float64
}

// Scale is the token unit a table's rates are expressed against. All
// rates within one table use the same scale.
type Scale float64

const (
	PerThousand Scale = 1_000
	PerMillion  Scale = 1_000_000
)

// Table is a static rate table for one provider family.
type Table struct {
	Provider     string
	Scale        Scale
	DefaultModel string
	Rates        map[string]Rate
}

// dateSuffix matches trailing snapshot segments such as -20251101 or
// -20251101-v2 that vendors append to model names.
var dateSuffix = regexp.MustCompile(`-\d{8}(?:-[a-z0-9]+)?$`)

// latestSuffix matches the "-latest" alias some tools report.
var latestSuffix = regexp.MustCompile(`-latest$`)

// Resolve maps a free-form model name to a table key and its rate. The
// chain: strip an optional provider/ prefix, exact case-insensitive
// match, bidirectional substring match, family normalization (collapsing
// date-suffixed names), and finally the table's default model.
func (t *Table) Resolve(model string) (string, Rate) {
	query := strings.ToLower(strings.TrimSpace(model))
	if i := strings.LastIndex(query, "/"); i >= 0 {
		query = query[i+1:]
	}

	if query != "" {
		if key, rate, ok := t.match(query); ok {
			return key, rate
		}
		if normalized := NormalizeModelName(query); normalized != query {
			if key, rate, ok := t.match(normalized); ok {
				return key, rate
			}
		}
	}

	return t.DefaultModel, t.Rates[t.DefaultModel]
}

func (t *Table) match(query string) (string, Rate, bool) {
	for key, rate := range t.Rates {
		if strings.ToLower(key) == query {
			return key, rate, true
		}
	}
	// Substring in either direction tolerates abbreviated and
	// date-suffixed names.
	var bestKey string
	for key := range t.Rates {
		lower := strings.ToLower(key)
		if strings.Contains(query, lower) || strings.Contains(lower, query) {
			// Prefer the longest key so "opus-4" does not shadow
			// "opus-4-5".
			if len(key) > len(bestKey) {
				bestKey = key
			}
		}
	}
	if bestKey != "" {
		return bestKey, t.Rates[bestKey], true
	}
	return "", Rate{}, false
}

// NormalizeModelName collapses known naming drift: date-suffixed
// snapshots ("claude-opus-4-5-20251101"), "-latest" aliases, and the
// "models/" prefix used by Gemini tooling.
func NormalizeModelName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.TrimPrefix(name, "models/")
	name = dateSuffix.ReplaceAllString(name, "")
	name = latestSuffix.ReplaceAllString(name, "")
	return name
}

// Cost prices the given usage against the resolved model's rate. Absent
// token kinds contribute zero.
func (t *Table) Cost(model string, u core.UsageTotals) float64 {
	_, rate := t.Resolve(model)
	return costAt(rate, float64(t.Scale), u)
}

func costAt(rate Rate, scale float64, u core.UsageTotals) float64 {
	cost := float64(u.InputTokens) / scale * rate.Input
	cost += float64(u.OutputTokens) / scale * rate.Output
	cost += float64(u.CacheReadTokens) / scale * rate.CacheRead
	cost += float64(u.CacheWriteTokens) / scale * rate.CacheWrite
	return cost
}

// CostFromModelInfo prices usage against a synced ModelInfo entry, whose
// rates are always per million tokens. Cache reads fall back to the
// input rate since sync sources rarely carry cache pricing.
func CostFromModelInfo(m core.ModelInfo, u core.UsageTotals) float64 {
	rate := Rate{Input: m.InputPerMTok, Output: m.OutputPerMTok, CacheRead: m.InputPerMTok / 10, CacheWrite: m.InputPerMTok}
	return costAt(rate, float64(PerMillion), u)
}

// CacheSavings reports how much cheaper the cache reads were than paying
// the full input rate for the same tokens.
func (t *Table) CacheSavings(model string, cacheReadTokens int64) float64 {
	_, rate := t.Resolve(model)
	full := float64(cacheReadTokens) / float64(t.Scale) * rate.Input
	actual := float64(cacheReadTokens) / float64(t.Scale) * rate.CacheRead
	return full - actual
}

// Validate logs table entries with suspicious rates. Zero-rate entries
// are legitimate (free tiers); negative rates are a table bug.
func (t *Table) Validate() bool {
	ok := true
	for key, rate := range t.Rates {
		if rate.Input < 0 || rate.Output < 0 || rate.CacheRead < 0 || rate.CacheWrite < 0 {
			log.Printf("[pricing] table %s: negative rate for %s", t.Provider, key)
			ok = false
		}
	}
	if _, present := t.Rates[t.DefaultModel]; !present {
		log.Printf("[pricing] table %s: default model %q has no rate entry", t.Provider, t.DefaultModel)
		ok = false
	}
	return ok
}
