package scan

import (
	"time"

	"github.com/google/uuid"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

// LogEvent is one decoded line of a per-session event log, already
// mapped out of the tool's own field names by the adapter.
type LogEvent struct {
	SessionID  string
	Timestamp  time.Time
	Role       string // "assistant", "user"/"human", or tool-specific
	Model      string
	Usage      core.UsageTotals
	Terminal   bool // event explicitly marks the session end
	FailureEnd bool // terminal event indicates a failure
}

// Accumulate builds one session from a stream of log events: first seen
// timestamp becomes the start, last seen timestamp the provisional end,
// role-tagged entries bump the message count, token sub-totals add up
// across every usage-bearing entry and the last non-empty model wins.
// Returns false when no event carried a timestamp.
func Accumulate(events []LogEvent) (core.Session, bool) {
	var (
		s     core.Session
		first time.Time
		last  time.Time
	)

	for _, ev := range events {
		if s.ID == "" && ev.SessionID != "" {
			s.ID = ev.SessionID
		}
		if !ev.Timestamp.IsZero() {
			if first.IsZero() || ev.Timestamp.Before(first) {
				first = ev.Timestamp
			}
			if ev.Timestamp.After(last) {
				last = ev.Timestamp
			}
		}

		switch ev.Role {
		case "assistant", "user", "human":
			s.Usage.Messages++
		}

		s.Usage.InputTokens += ev.Usage.InputTokens
		s.Usage.OutputTokens += ev.Usage.OutputTokens
		s.Usage.CacheReadTokens += ev.Usage.CacheReadTokens
		s.Usage.CacheWriteTokens += ev.Usage.CacheWriteTokens
		if ev.Model != "" {
			s.Usage.Model = ev.Model
		}

		if ev.Terminal {
			status := core.SessionCompleted
			if ev.FailureEnd {
				status = core.SessionFailed
			}
			s.Status = status
		}
	}

	if first.IsZero() {
		return core.Session{}, false
	}

	s.StartedAt = first
	if s.Status == core.SessionCompleted || s.Status == core.SessionFailed {
		end := last
		s.EndedAt = &end
	} else {
		// Provisional: liveness is decided later against the recency
		// window using the last activity timestamp.
		s.Status = core.SessionActive
		SetMeta(&s, MetaLastActivity, last.Format(time.RFC3339Nano))
	}
	return s, true
}

// ResolveSessionID applies the identity fallback: an explicit embedded
// id, then the filename stem when it parses as a session identifier, and
// finally a synthesized one. Synthesized ids are stable only within a
// single scan.
func ResolveSessionID(embedded, filenameStem string) string {
	if embedded != "" {
		return embedded
	}
	if _, err := uuid.Parse(filenameStem); err == nil {
		return filenameStem
	}
	return uuid.NewString()
}
