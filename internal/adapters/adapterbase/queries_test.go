package adapterbase

import (
	"sync"
	"testing"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
	"github.com/janekbaraniewski/agentcost/internal/scan"
)

type endSink struct {
	core.NopSink
	mu    sync.Mutex
	ended []core.Session
}

func (s *endSink) SessionEnded(sess core.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = append(s.ended, sess)
}

func (s *endSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ended)
}

func TestSessionEndedAnnouncedOnce(t *testing.T) {
	now := time.Now()
	idle := core.Session{ID: "idle-1", StartedAt: now.Add(-2 * time.Hour), Status: core.SessionActive}
	scan.SetMeta(&idle, scan.MetaLastActivity, now.Add(-45*time.Minute).Format(time.RFC3339Nano))

	chain := scan.Chain{
		Tool: core.ToolClaudeCode,
		Strategies: []scan.Strategy{{
			Name: "fixed",
			Parse: func(string) ([]core.Session, error) {
				s := idle
				return []core.Session{s}, nil
			},
		}},
	}

	sink := &endSink{}
	q := NewQueries(core.ToolClaudeCode, scan.NewCache(chain, []string{t.TempDir()}), nil, scan.DefaultWindows(), nil, sink)
	defer q.Close()

	for i := 0; i < 3; i++ {
		sessions, err := q.Sessions()
		if err != nil {
			t.Fatalf("Sessions: %v", err)
		}
		if len(sessions) != 1 || sessions[0].IsActive() {
			t.Fatalf("pass %d: sessions = %+v, want one closed session", i, sessions)
		}
	}

	if got := sink.count(); got != 1 {
		t.Errorf("SessionEnded fired %d times across repeated queries, want 1", got)
	}
	if len(sink.ended) > 0 && sink.ended[0].ID != "idle-1" {
		t.Errorf("announced session = %q", sink.ended[0].ID)
	}
}
