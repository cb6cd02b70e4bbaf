package codex

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

// indexEntry is one record of the sessions.json index newer Codex
// releases write alongside the rollout logs.
type indexEntry struct {
	ID           string `json:"id"`
	StartedAt    string `json:"started_at"`
	EndedAt      string `json:"ended_at"`
	Status       string `json:"status"`
	Model        string `json:"model"`
	Workdir      string `json:"workdir"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	CachedTokens int64  `json:"cached_input_tokens"`
}

func aggregateStrategy() scan.Strategy {
	return scan.Strategy{Name: "session-index", Parse: parseIndex}
}

func parseIndex(dir string) ([]core.Session, error) {
	path := filepath.Join(dir, "sessions.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw []indexEntry
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
			ID:          scan.ResolveSessionID(entry.ID, ""),
			StartedAt:   started,
			Status:      statusFromIndex(entry.Status),
			ProjectPath: entry.Workdir,
			Usage: core.UsageTotals{
				InputTokens:     parsers.NonNegative(entry.InputTokens),
				OutputTokens:    parsers.NonNegative(entry.OutputTokens),
				CacheReadTokens: parsers.NonNegative(entry.CachedTokens),
				Model:           entry.Model,
			},
		}
		if ended, ok := parsers.ParseTimestamp(entry.EndedAt); ok {
			s.Complete(ended)
		} else if s.Status != core.SessionActive {
			s.Complete(started)
		} else if info != nil {
			scan.SetMeta(&s, scan.MetaSourceMtime, info.ModTime().Format(time.RFC3339Nano))
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func statusFromIndex(raw string) core.SessionStatus {
	switch strings.ToLower(raw) {
	case "completed":
		return core.SessionCompleted
	case "failed":
		return core.SessionFailed
	case "terminated", "interrupted":
		return core.SessionTerminated
	default:
		return core.SessionActive
	}
}

// rolloutLine is one event of a rollout-*.jsonl log. Codex nests the
// interesting bits under payload; unknown payload types are ignored.
type rolloutLine struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Payload   struct {
		ID     string `json:"id"`
		Role   string `json:"role"`
		Model  string `json:"model"`
		Status string `json:"status"`
		CWD    string `json:"cwd"`
		Usage  *struct {
			InputTokens       int64 `json:"input_tokens"`
			OutputTokens      int64 `json:"output_tokens"`
			CachedInputTokens int64 `json:"cached_input_tokens"`
		} `json:"usage,omitempty"`
	} `json:"payload"`
}

func rolloutLogStrategy() scan.Strategy {
	return scan.Strategy{Name: "rollout-logs", Parse: parseRolloutLogs}
}

func parseRolloutLogs(dir string) ([]core.Session, error) {
	files := scan.CollectFiles(filepath.Join(dir, "sessions"), ".jsonl")

	var sessions []core.Session
	for _, path := range files {
		lines, err := parsers.DecodeJSONLines[rolloutLine](path)
		if err != nil || len(lines) == 0 {
			continue
		}

		var (
			events     []scan.LogEvent
			embeddedID string
			workdir    string
		)
		for _, l := range lines {
			if embeddedID == "" && l.Type == "session_meta" && l.Payload.ID != "" {
				embeddedID = l.Payload.ID
			}
			if workdir == "" && l.Payload.CWD != "" {
				workdir = l.Payload.CWD
			}

			ev := scan.LogEvent{Role: l.Payload.Role, Model: l.Payload.Model}
			if ts, ok := parsers.ParseTimestamp(l.Timestamp); ok {
				ev.Timestamp = ts
			}
			if u := l.Payload.Usage; u != nil {
				ev.Usage = core.UsageTotals{
					InputTokens:     parsers.NonNegative(u.InputTokens),
					OutputTokens:    parsers.NonNegative(u.OutputTokens),
					CacheReadTokens: parsers.NonNegative(u.CachedInputTokens),
				}
			}
			if l.Type == "session_end" {
				ev.Terminal = true
				ev.FailureEnd = strings.EqualFold(l.Payload.Status, "failed")
			}
			events = append(events, ev)
		}

		s, ok := scan.Accumulate(events)
		if !ok {
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(path), ".jsonl")
		stem = strings.TrimPrefix(stem, "rollout-")
		s.ID = scan.ResolveSessionID(embeddedID, stem)
		s.ProjectPath = workdir
		if info, statErr := os.Stat(path); statErr == nil {
			scan.SetMeta(&s, scan.MetaSourceMtime, info.ModTime().Format(time.RFC3339Nano))
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
