package scan

import (
	"sort"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
	"github.com/janekbaraniewski/agentcost/internal/parsers"
)

// Metadata keys carrying liveness signals from parse strategies until
// Finalize resolves them.
const (
	// MetaLastActivity is the last observed in-log activity timestamp.
	MetaLastActivity = "last_activity"
	// MetaSourceMtime is the source file's modification time, the
	// weakest liveness signal.
	MetaSourceMtime = "source_mtime"
)

// Windows holds the recency thresholds for liveness inference.
type Windows struct {
	// Activity is how recently a session must have shown activity to
	// count as live.
	Activity time.Duration
	// Stale bounds how old a file's mtime may be when mtime is the only
	// signal; beyond it the session is force-completed.
	Stale time.Duration
}

func DefaultWindows() Windows {
	return Windows{Activity: 30 * time.Minute, Stale: 60 * time.Minute}
}

// Finalize resolves the liveness of every provisionally active session
// against the recency windows. A session with no end marker stays active
// only while its last activity is inside the activity window; otherwise
// it is completed retroactively at that timestamp. When the file's mtime
// is the only signal and exceeds the stale window, the session is
// force-completed at the mtime so abandoned logs cannot stay "active"
// forever.
func Finalize(sessions []core.Session, now time.Time, w Windows) []core.Session {
	out := make([]core.Session, 0, len(sessions))
	for _, s := range sessions {
		if !s.IsActive() {
			out = append(out, s)
			continue
		}

		lastActivity, hasActivity := metaTime(s, MetaLastActivity)
		mtime, hasMtime := metaTime(s, MetaSourceMtime)

		switch {
		case hasActivity:
			if now.Sub(lastActivity) > w.Activity {
				s.Complete(lastActivity)
			}
		case hasMtime:
			if now.Sub(mtime) > w.Stale {
				s.Complete(mtime)
			}
		default:
			if now.Sub(s.StartedAt) > w.Activity {
				s.Complete(s.StartedAt)
			}
		}
		out = append(out, s)
	}
	return out
}

// Active projects the live sessions out of a finalized list. A session
// counts as live only while its most recent known activity signal, file
// mtime included, falls inside the activity window; an mtime-only
// session in the gap between the activity and stale windows is therefore
// not reported even though Finalize has not yet force-completed it. With
// singleWinner set, only the most recently active session is returned,
// which is what status displays want when several directories hold
// half-open logs.
func Active(sessions []core.Session, now time.Time, w Windows, singleWinner bool) []core.ActiveSession {
	var active []core.ActiveSession
	for _, s := range sessions {
		if !s.IsActive() {
			continue
		}
		last, ok := metaTime(s, MetaLastActivity)
		if !ok {
			if last, ok = metaTime(s, MetaSourceMtime); !ok {
				last = s.StartedAt
			}
		}
		if now.Sub(last) > w.Activity {
			continue
		}
		active = append(active, core.ActiveSession{
			ID:             s.ID,
			Tool:           s.Tool,
			StartedAt:      s.StartedAt,
			LastActivityAt: last,
			Tokens:         s.Usage.TotalTokens(),
			Model:          s.Usage.Model,
			ProjectPath:    s.ProjectPath,
		})
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].LastActivityAt.After(active[j].LastActivityAt)
	})
	if singleWinner && len(active) > 1 {
		active = active[:1]
	}
	return active
}

func metaTime(s core.Session, key string) (time.Time, bool) {
	raw, ok := s.Metadata[key]
	if !ok {
		return time.Time{}, false
	}
	return parsers.ParseTimestamp(raw)
}

// SetMeta records a metadata value, allocating the bag on first use.
func SetMeta(s *core.Session, key, value string) {
	if s.Metadata == nil {
		s.Metadata = make(map[string]string)
	}
	s.Metadata[key] = value
}
