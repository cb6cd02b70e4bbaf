package core

import (
	"context"
	"time"
)

// SyncProvider is one pluggable source of model pricing data.
type SyncProvider interface {
	Name() string

	// Official reports whether this source is the model vendor itself.
	Official() bool

	// Priority ranks sources for conflict resolution; lower is more
	// authoritative.
	Priority() int

	// FetchModels returns the source's current model list. Implementations
	// degrade to a static known-good table rather than failing when no
	// network credential is available.
	FetchModels(ctx context.Context) ([]ModelInfo, error)

	HealthCheck(ctx context.Context) bool
}

// SourceModels pairs one sync source's identity with the models it
// reported, the shape consumed by the aggregator.
type SourceModels struct {
	Source   string
	Priority int
	Official bool
	Models   []ModelInfo
}

// ModelRepository persists the aggregated price table, keyed by
// ModelInfo.Key(). Entries are only ever overwritten, never deleted.
type ModelRepository interface {
	Upsert(ctx context.Context, m ModelInfo) error
	Lookup(ctx context.Context, provider, model string) (ModelInfo, bool, error)
	List(ctx context.Context) ([]ModelInfo, error)
}

// SyncResult is the outcome of one provider's fetch within a full sync
// run.
type SyncResult struct {
	Provider       string        `json:"provider"`
	Success        bool          `json:"success"`
	ModelsFetched  int           `json:"models_fetched"`
	ModelsUpserted int           `json:"models_upserted"`
	UpsertFailures int           `json:"upsert_failures"`
	Duration       time.Duration `json:"duration"`
	Errors         []string      `json:"errors,omitempty"`
	At             time.Time     `json:"at"`
}

// SyncHistoryEntry is one append-only history record; the scheduler keeps
// only the most recent N.
type SyncHistoryEntry struct {
	Provider   string        `json:"provider"`
	Success    bool          `json:"success"`
	ModelCount int           `json:"model_count"`
	Duration   time.Duration `json:"duration"`
	At         time.Time     `json:"at"`
}

// ProviderSyncStatus is the rolling health record for one sync provider.
type ProviderSyncStatus struct {
	Provider            string    `json:"provider"`
	Enabled             bool      `json:"enabled"`
	LastSync            time.Time `json:"last_sync"`
	LastSuccess         time.Time `json:"last_success"`
	ModelsCount         int       `json:"models_count"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastError           string    `json:"last_error,omitempty"`
}

// EventSink receives lifecycle notifications. It is consumed only; the
// hook dispatcher behind it lives outside this module.
type EventSink interface {
	SessionEnded(s Session)
	CostRecorded(r CostRecord)
	SyncCompleted(res SyncResult)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) SessionEnded(Session)      {}
func (NopSink) CostRecorded(CostRecord)   {}
func (NopSink) SyncCompleted(SyncResult)  {}
