package core

import (
	"strings"
	"time"
)

// ToolType identifies one locally installed coding-assistant tool.
type ToolType string

const (
	ToolClaudeCode ToolType = "claude-code"
	ToolCodex      ToolType = "codex"
	ToolGeminiCLI  ToolType = "gemini-cli"
	ToolCursor     ToolType = "cursor"
)

type SessionStatus string

const (
	SessionActive     SessionStatus = "active"
	SessionCompleted  SessionStatus = "completed"
	SessionFailed     SessionStatus = "failed"
	SessionTerminated SessionStatus = "terminated"
)

// Session is the canonical, tool-agnostic record of one usage episode.
// EndedAt is nil exactly while Status is SessionActive; once set the
// status is terminal and the record is never reopened.
type Session struct {
	ID          string            `json:"id"`
	Tool        ToolType          `json:"tool"`
	StartedAt   time.Time         `json:"started_at"`
	EndedAt     *time.Time        `json:"ended_at,omitempty"`
	Status      SessionStatus     `json:"status"`
	Usage       UsageTotals       `json:"usage"`
	ProjectPath string            `json:"project_path,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func (s Session) IsActive() bool {
	return s.Status == SessionActive && s.EndedAt == nil
}

// Complete marks the session finished at the given instant. Calling it on
// an already-terminal session is a no-op.
func (s *Session) Complete(at time.Time) {
	if s.EndedAt != nil {
		return
	}
	t := at
	s.EndedAt = &t
	if s.Status == SessionActive || s.Status == "" {
		s.Status = SessionCompleted
	}
}

// LastActivityAt is the best known activity instant: the end time when
// recorded, otherwise the start time.
func (s Session) LastActivityAt() time.Time {
	if s.EndedAt != nil {
		return *s.EndedAt
	}
	return s.StartedAt
}

// UsageTotals accumulates token counts for one session. Model holds the
// last-seen model name; a session may have spanned several.
type UsageTotals struct {
	InputTokens      int64  `json:"input_tokens"`
	OutputTokens     int64  `json:"output_tokens"`
	CacheReadTokens  int64  `json:"cache_read_tokens,omitempty"`
	CacheWriteTokens int64  `json:"cache_write_tokens,omitempty"`
	Messages         int    `json:"messages,omitempty"`
	Model            string `json:"model,omitempty"`
}

func (u UsageTotals) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens + u.CacheReadTokens + u.CacheWriteTokens
}

// Add folds another total into u. The other side's model wins when set,
// matching the last-seen-model rule.
func (u *UsageTotals) Add(other UsageTotals) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheReadTokens += other.CacheReadTokens
	u.CacheWriteTokens += other.CacheWriteTokens
	u.Messages += other.Messages
	if other.Model != "" {
		u.Model = other.Model
	}
}

// ActiveSession is a lightweight liveness projection. It is recomputed on
// demand and never persisted.
type ActiveSession struct {
	ID             string    `json:"id"`
	Tool           ToolType  `json:"tool"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	Tokens         int64     `json:"tokens"`
	Model          string    `json:"model,omitempty"`
	ProjectPath    string    `json:"project_path,omitempty"`
}

// ModelInfo is one priced model as reported by a sync source. Prices are
// USD per million tokens.
type ModelInfo struct {
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	InputPerMTok  float64   `json:"input_per_mtok"`
	OutputPerMTok float64   `json:"output_per_mtok"`
	ContextWindow int       `json:"context_window"`
	LastSynced    time.Time `json:"last_synced"`
}

// Key returns the case-insensitive identity "provider/model".
func (m ModelInfo) Key() string {
	return strings.ToLower(m.Provider) + "/" + strings.ToLower(m.Model)
}

// CostRecord is a derived pricing result. It is never mutated after
// creation.
type CostRecord struct {
	SessionID    string    `json:"session_id"`
	Tool         ToolType  `json:"tool"`
	Model        string    `json:"model"`
	InputTokens  int64     `json:"input_tokens"`
	OutputTokens int64     `json:"output_tokens"`
	CostUSD      float64   `json:"cost_usd"`
	Timestamp    time.Time `json:"timestamp"`
}

// ConflictResolution picks the winner when two sync sources disagree on
// the same model identity. It is a pure comparison policy.
type ConflictResolution string

const (
	OfficialFirst        ConflictResolution = "official-first"
	MostRecent           ConflictResolution = "most-recent"
	LowestPrice          ConflictResolution = "lowest-price"
	HighestContextWindow ConflictResolution = "highest-context-window"
)
