package codex

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSessionIndexPreferred(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sessions.json"), `[
		{"id":"idx-1","started_at":"2026-08-20T10:00:00Z","ended_at":"2026-08-20T10:30:00Z",
		 "status":"completed","model":"gpt-5","workdir":"/w",
		 "input_tokens":4000,"output_tokens":1000,"cached_input_tokens":500}
	]`)
	// A rollout log that must be shadowed by the index.
	writeFile(t, filepath.Join(dir, "sessions", "rollout-zzz.jsonl"),
		`{"timestamp":"2026-08-20T09:00:00Z","type":"event_msg","payload":{"role":"user"}}`)

	a := New(Config{DataDir: dir})
	defer a.Queries.Close()

	sessions, err := a.Sessions()
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1 from index", len(sessions))
	}
	s := sessions[0]
	if s.ID != "idx-1" || s.Status != core.SessionCompleted {
		t.Errorf("session = %s/%s, want idx-1/completed", s.ID, s.Status)
	}
	if got := s.Usage.TotalTokens(); got != 5500 {
		t.Errorf("total tokens = %d, want 5500", got)
	}
}

func TestRolloutLogFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sessions", "2026", "08", "rollout-abc.jsonl"),
		`{"timestamp":"2026-08-20T10:00:00Z","type":"session_meta","payload":{"id":"sess-42","cwd":"/proj"}}
{"timestamp":"2026-08-20T10:01:00Z","type":"event_msg","payload":{"role":"user"}}
{"timestamp":"2026-08-20T10:02:00Z","type":"event_msg","payload":{"role":"assistant","model":"gpt-5","usage":{"input_tokens":2000,"output_tokens":800,"cached_input_tokens":100}}}
{"timestamp":"2026-08-20T10:05:00Z","type":"session_end","payload":{"status":"completed"}}`)

	a := New(Config{DataDir: dir})
	defer a.Queries.Close()

	sessions, err := a.Sessions()
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	s := sessions[0]
	if s.ID != "sess-42" {
		t.Errorf("ID = %s, want embedded sess-42", s.ID)
	}
	if s.Status != core.SessionCompleted || s.EndedAt == nil {
		t.Errorf("status = %s ended=%v, want completed with end time", s.Status, s.EndedAt)
	}
	if s.ProjectPath != "/proj" {
		t.Errorf("ProjectPath = %s, want /proj", s.ProjectPath)
	}
	if s.Usage.Model != "gpt-5" || s.Usage.InputTokens != 2000 || s.Usage.OutputTokens != 800 {
		t.Errorf("usage = %+v", s.Usage)
	}
}

func TestCostUsesOpenAIRates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sessions.json"), `[
		{"id":"idx-1","started_at":"2026-08-20T10:00:00Z","ended_at":"2026-08-20T10:30:00Z",
		 "status":"completed","model":"gpt-5","input_tokens":1000000,"output_tokens":100000}
	]`)

	a := New(Config{DataDir: dir})
	defer a.Queries.Close()

	cost, err := a.TotalCost(time.Time{})
	if err != nil {
		t.Fatalf("TotalCost: %v", err)
	}
	want := 1.25 + 0.1*10.00
	if diff := cost - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("cost = %v, want %v", cost, want)
	}
}

func TestIndexWithoutEndStaysActiveWhenFresh(t *testing.T) {
	dir := t.TempDir()
	started := time.Now().UTC().Add(-5 * time.Minute).Format(time.RFC3339)
	writeFile(t, filepath.Join(dir, "sessions.json"), fmt.Sprintf(`[
		{"id":"live-1","started_at":%q,"status":"active","model":"gpt-5"}
	]`, started))

	a := New(Config{DataDir: dir})
	defer a.Queries.Close()

	active, err := a.ActiveSessions()
	if err != nil {
		t.Fatalf("ActiveSessions: %v", err)
	}
	if len(active) != 1 || active[0].ID != "live-1" {
		t.Fatalf("active = %+v, want single live-1", active)
	}
}
