package claudecode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
	"github.com/janekbaraniewski/agentcost/internal/parsers"
	"github.com/janekbaraniewski/agentcost/internal/scan"
)

// aggregateSession is one entry of the sessions.json summary file some
// installations maintain. Reading it is much cheaper than replaying the
// JSONL logs, so this strategy runs first.
type aggregateSession struct {
	SessionID    string `json:"sessionId"`
	StartedAt    string `json:"startedAt"`
	EndedAt      string `json:"endedAt"`
	Status       string `json:"status"`
	Model        string `json:"model"`
	CWD          string `json:"cwd"`
	InputTokens  int64  `json:"inputTokens"`
	OutputTokens int64  `json:"outputTokens"`
	CacheRead    int64  `json:"cacheReadInputTokens"`
	CacheWrite   int64  `json:"cacheCreationInputTokens"`
	MessageCount int    `json:"messageCount"`
}

func aggregateStrategy() scan.Strategy {
	return scan.Strategy{Name: "aggregate", Parse: parseAggregate}
}

func parseAggregate(dir string) ([]core.Session, error) {
	path := filepath.Join(dir, "sessions.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw []aggregateSession
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	info, _ := os.Stat(path)

	var sessions []core.Session
	for _, entry := range raw {
		started, ok := parsers.ParseTimestamp(entry.StartedAt)
		if !ok {
			continue
		}

		s := core.Session{
			ID:          scan.ResolveSessionID(entry.SessionID, ""),
			StartedAt:   started,
			Status:      statusFromAggregate(entry.Status),
			ProjectPath: entry.CWD,
			Usage: core.UsageTotals{
				InputTokens:      parsers.NonNegative(entry.InputTokens),
				OutputTokens:     parsers.NonNegative(entry.OutputTokens),
				CacheReadTokens:  parsers.NonNegative(entry.CacheRead),
				CacheWriteTokens: parsers.NonNegative(entry.CacheWrite),
				Messages:         entry.MessageCount,
				Model:            entry.Model,
			},
		}

		if ended, ok := parsers.ParseTimestamp(entry.EndedAt); ok {
			s.Complete(ended)
		} else if s.Status != core.SessionActive {
			// Terminal status without a timestamp: close at start.
			s.Complete(started)
		} else if info != nil {
			scan.SetMeta(&s, scan.MetaSourceMtime, info.ModTime().Format(time.RFC3339Nano))
		}

		sessions = append(sessions, s)
	}
	return sessions, nil
}

func statusFromAggregate(raw string) core.SessionStatus {
	switch strings.ToLower(raw) {
	case "completed", "done":
		return core.SessionCompleted
	case "failed", "error":
		return core.SessionFailed
	case "terminated", "killed":
		return core.SessionTerminated
	default:
		return core.SessionActive
	}
}

// logEntry mirrors one line of a per-session conversation log under
// projects/. Unknown fields are ignored by design.
type logEntry struct {
	Type      string  `json:"type"`
	SessionID string  `json:"sessionId"`
	Timestamp string  `json:"timestamp"`
	Subtype   string  `json:"subtype,omitempty"`
	CWD       string  `json:"cwd,omitempty"`
	Message   *logMsg `json:"message,omitempty"`
}

type logMsg struct {
	Role  string    `json:"role"`
	Model string    `json:"model"`
	Usage *logUsage `json:"usage,omitempty"`
}

type logUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
}

func eventLogStrategy() scan.Strategy {
	return scan.Strategy{Name: "event-logs", Parse: parseEventLogs}
}

// parseEventLogs replays every per-session JSONL log under projects/.
// One file is one session; each line is an independent event and a
// malformed line never discards the rest of the file.
func parseEventLogs(dir string) ([]core.Session, error) {
	files := scan.CollectFiles(filepath.Join(dir, "projects"), ".jsonl")

	var sessions []core.Session
	for _, path := range files {
		entries, err := parsers.DecodeJSONLines[logEntry](path)
		if err != nil || len(entries) == 0 {
			continue
		}

		var (
			events      []scan.LogEvent
			embeddedID  string
			projectPath string
		)
		for _, e := range entries {
			if embeddedID == "" && e.SessionID != "" {
				embeddedID = e.SessionID
			}
			if projectPath == "" && e.CWD != "" {
				projectPath = e.CWD
			}

			ev := scan.LogEvent{}
			if ts, ok := parsers.ParseTimestamp(e.Timestamp); ok {
				ev.Timestamp = ts
			}
			if e.Message != nil {
				ev.Role = e.Message.Role
				ev.Model = e.Message.Model
				if u := e.Message.Usage; u != nil {
					ev.Usage = core.UsageTotals{
						InputTokens:      parsers.NonNegative(u.InputTokens),
						OutputTokens:     parsers.NonNegative(u.OutputTokens),
						CacheReadTokens:  parsers.NonNegative(u.CacheReadInputTokens),
						CacheWriteTokens: parsers.NonNegative(u.CacheCreationInputTokens),
					}
				}
			} else if e.Type == "assistant" || e.Type == "user" {
				ev.Role = e.Type
			}
			if e.Type == "result" || e.Subtype == "session_end" {
				ev.Terminal = true
				ev.FailureEnd = strings.Contains(strings.ToLower(e.Subtype), "error")
			}
			events = append(events, ev)
		}

		s, ok := scan.Accumulate(events)
		if !ok {
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(path), ".jsonl")
		s.ID = scan.ResolveSessionID(embeddedID, stem)
		s.ProjectPath = projectPath
		if info, statErr := os.Stat(path); statErr == nil {
			scan.SetMeta(&s, scan.MetaSourceMtime, info.ModTime().Format(time.RFC3339Nano))
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
