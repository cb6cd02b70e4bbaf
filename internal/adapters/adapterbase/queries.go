package adapterbase

import (
	"sort"
	"sync"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
	"github.com/janekbaraniewski/agentcost/internal/scan"
)

// Coster is the cost surface the queries need; satisfied by both the
// static and hybrid pricing tables.
type Coster interface {
	Cost(model string, u core.UsageTotals) float64
}

// Queries implements the read side of core.Adapter over a scan cache and
// a cost model. Read queries never fail on corrupt files; whatever the
// chain recovered is what callers get.
type Queries struct {
	tool    core.ToolType
	cache   *scan.Cache
	coster  Coster
	windows scan.Windows
	models  []string
	sink    core.EventSink
	now     func() time.Time

	mu        sync.Mutex
	announced map[string]bool
}

func NewQueries(tool core.ToolType, cache *scan.Cache, coster Coster, windows scan.Windows, models []string, sink core.EventSink) *Queries {
	if sink == nil {
		sink = core.NopSink{}
	}
	sorted := append([]string(nil), models...)
	sort.Strings(sorted)
	return &Queries{
		tool:      tool,
		cache:     cache,
		coster:    coster,
		windows:   windows,
		models:    sorted,
		sink:      sink,
		now:       time.Now,
		announced: make(map[string]bool),
	}
}

// SetNow overrides the clock, for tests.
func (q *Queries) SetNow(now func() time.Time) { q.now = now }

func (q *Queries) Sessions() ([]core.Session, error) {
	raw := q.cache.Sessions()
	finalized := scan.Finalize(raw, q.now(), q.windows)

	// Sessions the recency heuristic closes are announced to the hook
	// sink exactly once, however often callers re-query; the cached raw
	// snapshot stays provisional-active between rescans.
	q.mu.Lock()
	for i, s := range finalized {
		if !s.IsActive() && raw[i].IsActive() && !q.announced[s.ID] {
			q.announced[s.ID] = true
			q.sink.SessionEnded(s)
		}
	}
	q.mu.Unlock()
	return finalized, nil
}

func (q *Queries) ActiveSessions() ([]core.ActiveSession, error) {
	sessions, err := q.Sessions()
	if err != nil {
		return nil, err
	}
	return scan.Active(sessions, q.now(), q.windows, false), nil
}

// Usage sums token totals across sessions whose last activity falls at
// or after since. A zero since means everything.
func (q *Queries) Usage(since time.Time) (core.UsageTotals, error) {
	sessions, err := q.Sessions()
	if err != nil {
		return core.UsageTotals{}, err
	}

	var total core.UsageTotals
	for _, s := range sessions {
		if !since.IsZero() && s.LastActivityAt().Before(since) {
			continue
		}
		total.Add(s.Usage)
	}
	return total, nil
}

// TotalCost prices every in-window session and reports the sum. Each
// priced session is also published to the event sink as a CostRecord.
func (q *Queries) TotalCost(since time.Time) (float64, error) {
	sessions, err := q.Sessions()
	if err != nil {
		return 0, err
	}

	now := q.now()
	var total float64
	for _, s := range sessions {
		if !since.IsZero() && s.LastActivityAt().Before(since) {
			continue
		}
		cost := q.coster.Cost(s.Usage.Model, s.Usage)
		total += cost
		q.sink.CostRecorded(core.CostRecord{
			SessionID:    s.ID,
			Tool:         q.tool,
			Model:        s.Usage.Model,
			InputTokens:  s.Usage.InputTokens,
			OutputTokens: s.Usage.OutputTokens,
			CostUSD:      cost,
			Timestamp:    now,
		})
	}
	return total, nil
}

func (q *Queries) SupportedModels() []string {
	return append([]string(nil), q.models...)
}

// Close releases the underlying scan cache watcher.
func (q *Queries) Close() {
	q.cache.Close()
}
