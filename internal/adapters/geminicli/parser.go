package geminicli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
	"github.com/janekbaraniewski/agentcost/internal/parsers"
	"github.com/janekbaraniewski/agentcost/internal/scan"
)

// aggregateEntry is one record of the sessions.json history file.
type aggregateEntry struct {
	SessionID    string `json:"sessionId"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Model        string `json:"model"`
	ProjectDir   string `json:"projectDir"`
	PromptTokens int64  `json:"promptTokenCount"`
	OutputTokens int64  `json:"candidatesTokenCount"`
	CachedTokens int64  `json:"cachedContentTokenCount"`
	TurnCount    int    `json:"turnCount"`
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

	var raw []aggregateEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var sessions []core.Session
	for _, entry := range raw {
		started, ok := parsers.ParseTimestamp(entry.StartTime)
		if !ok {
			continue
		}
		s := core.Session{
			ID:          scan.ResolveSessionID(entry.SessionID, ""),
			StartedAt:   started,
			Status:      core.SessionActive,
			ProjectPath: entry.ProjectDir,
			Usage: core.UsageTotals{
				InputTokens:     parsers.NonNegative(entry.PromptTokens),
				OutputTokens:    parsers.NonNegative(entry.OutputTokens),
				CacheReadTokens: parsers.NonNegative(entry.CachedTokens),
				Messages:        entry.TurnCount,
				Model:           entry.Model,
			},
		}
		if ended, ok := parsers.ParseTimestamp(entry.EndTime); ok {
			s.Complete(ended)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// stateFile is the single current-session object the CLI maintains
// while running; lastActiveTime is the liveness signal, with the file
// mtime as fallback.
type stateFile struct {
	SessionID      string `json:"sessionId"`
	StartTime      string `json:"startTime"`
	LastActiveTime string `json:"lastActiveTime"`
	Model          string `json:"model"`
	ProjectDir     string `json:"projectDir"`
	TotalTokens    struct {
		Prompt     int64 `json:"prompt"`
		Candidates int64 `json:"candidates"`
		Cached     int64 `json:"cached"`
	} `json:"totalTokens"`
}

func stateFileStrategy() scan.Strategy {
	return scan.Strategy{Name: "state-file", Parse: parseStateFile}
}

func parseStateFile(dir string) ([]core.Session, error) {
	path := filepath.Join(dir, "tmp", "session.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var state stateFile
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	started, ok := parsers.ParseTimestamp(state.StartTime)
	if !ok {
		return nil, nil
	}

	s := core.Session{
		ID:          scan.ResolveSessionID(state.SessionID, ""),
		StartedAt:   started,
		Status:      core.SessionActive,
		ProjectPath: state.ProjectDir,
		Usage: core.UsageTotals{
			InputTokens:     parsers.NonNegative(state.TotalTokens.Prompt),
			OutputTokens:    parsers.NonNegative(state.TotalTokens.Candidates),
			CacheReadTokens: parsers.NonNegative(state.TotalTokens.Cached),
			Model:           state.Model,
		},
	}

	if last, ok := parsers.ParseTimestamp(state.LastActiveTime); ok {
		scan.SetMeta(&s, scan.MetaLastActivity, last.Format(time.RFC3339Nano))
	} else if info, statErr := os.Stat(path); statErr == nil {
		scan.SetMeta(&s, scan.MetaSourceMtime, info.ModTime().Format(time.RFC3339Nano))
	}
	return []core.Session{s}, nil
}
