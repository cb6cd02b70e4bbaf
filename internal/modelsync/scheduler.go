package modelsync

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

const (
	DefaultInterval  = 6 * time.Hour
	DefaultRetention = 50
	fetchTimeout     = 30 * time.Second
)

// Scheduler runs the fetch-merge-upsert pipeline on a fixed interval.
// Start launches a single background goroutine that syncs immediately
// and then on every tick; Stop is idempotent and waits for the goroutine
// to drain.
type Scheduler struct {
	repo      core.ModelRepository
	providers []core.SyncProvider
	policy    core.ConflictResolution
	interval  time.Duration
	retention int
	sink      core.EventSink
	now       func() time.Time

	mu      sync.RWMutex
	running bool
	stop    chan struct{}
	done    chan struct{}
	status  map[string]core.ProviderSyncStatus
	history []core.SyncHistoryEntry
}

type SchedulerConfig struct {
	Repo      core.ModelRepository
	Providers []core.SyncProvider
	Policy    core.ConflictResolution
	Interval  time.Duration
	Retention int
	Sink      core.EventSink
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.Policy == "" {
		cfg.Policy = core.OfficialFirst
	}
	if cfg.Sink == nil {
		cfg.Sink = core.NopSink{}
	}
	return &Scheduler{
		repo:      cfg.Repo,
		providers: cfg.Providers,
		policy:    cfg.Policy,
		interval:  cfg.Interval,
		retention: cfg.Retention,
		sink:      cfg.Sink,
		now:       time.Now,
		status:    make(map[string]core.ProviderSyncStatus),
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return core.ErrSchedulerRunning
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go s.run(stop, done)
	return nil
}

// Stop halts the background loop. Calling it when the scheduler is not
// running is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
}

func (s *Scheduler) run(stop, done chan struct{}) {
	defer close(done)

	s.syncPass()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.syncPass()
		case <-stop:
			return
		}
	}
}

func (s *Scheduler) syncPass() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout*time.Duration(len(s.providers)+1))
	defer cancel()
	if _, err := s.SyncOnce(ctx); err != nil {
		log.Printf("[modelsync] sync pass failed: %v", err)
	}
}

// SyncOnce runs one full pipeline pass: every provider is fetched, the
// successful sources are merged under the conflict policy, and the
// merged table is written to the repository. One SyncResult per provider
// is returned and published to the event sink; a provider failing never
// aborts the pass.
func (s *Scheduler) SyncOnce(ctx context.Context) ([]core.SyncResult, error) {
	results := make([]core.SyncResult, 0, len(s.providers))
	sources := make([]core.SourceModels, 0, len(s.providers))

	for _, p := range s.providers {
		started := s.now()
		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		models, err := p.FetchModels(fetchCtx)
		cancel()

		res := core.SyncResult{
			Provider:      p.Name(),
			Success:       err == nil,
			ModelsFetched: len(models),
			Duration:      s.now().Sub(started),
			At:            started,
		}
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			log.Printf("[modelsync] %s: fetch failed: %v", p.Name(), err)
		} else {
			sources = append(sources, core.SourceModels{
				Source:   p.Name(),
				Priority: p.Priority(),
				Official: p.Official(),
				Models:   models,
			})
		}
		results = append(results, res)
	}

	merged := mergeEntries(sources, s.policy)

	upserted := make(map[string]int)
	failures := make(map[string]int)
	for _, e := range merged {
		if err := s.repo.Upsert(ctx, e.model); err != nil {
			failures[e.source]++
			log.Printf("[modelsync] upsert %s: %v", e.model.Key(), err)
			continue
		}
		upserted[e.source]++
	}

	for i := range results {
		results[i].ModelsUpserted = upserted[results[i].Provider]
		results[i].UpsertFailures = failures[results[i].Provider]
		if results[i].UpsertFailures > 0 {
			results[i].Success = false
		}
		s.record(results[i])
		s.sink.SyncCompleted(results[i])
	}
	return results, ctx.Err()
}

// record folds one provider result into the rolling status map and the
// capped history.
func (s *Scheduler) record(res core.SyncResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status[res.Provider]
	st.Provider = res.Provider
	st.Enabled = true
	st.LastSync = res.At
	if res.Success {
		st.LastSuccess = res.At
		st.ModelsCount = res.ModelsFetched
		st.ConsecutiveFailures = 0
		st.LastError = ""
	} else {
		st.ConsecutiveFailures++
		// The first error of a failed run is the one worth keeping; later
		// ones are usually fallout.
		if len(res.Errors) > 0 {
			st.LastError = res.Errors[0]
		}
	}
	s.status[res.Provider] = st

	s.history = append(s.history, core.SyncHistoryEntry{
		Provider:   res.Provider,
		Success:    res.Success,
		ModelCount: res.ModelsFetched,
		Duration:   res.Duration,
		At:         res.At,
	})
	if len(s.history) > s.retention {
		s.history = s.history[len(s.history)-s.retention:]
	}
}

func (s *Scheduler) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) Status() []core.ProviderSyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.ProviderSyncStatus, 0, len(s.providers))
	for _, p := range s.providers {
		if st, ok := s.status[p.Name()]; ok {
			out = append(out, st)
		} else {
			out = append(out, core.ProviderSyncStatus{Provider: p.Name(), Enabled: true})
		}
	}
	return out
}

func (s *Scheduler) History() []core.SyncHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.SyncHistoryEntry(nil), s.history...)
}
