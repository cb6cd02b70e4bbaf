package scan

import (
	"testing"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

func provisional(id string, started, lastActivity time.Time) core.Session {
	s := core.Session{ID: id, Tool: core.ToolClaudeCode, StartedAt: started, Status: core.SessionActive}
	SetMeta(&s, MetaLastActivity, lastActivity.Format(time.RFC3339Nano))
	return s
}

func TestFinalizeRecencyWindow(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	w := DefaultWindows()

	recent := provisional("recent", now.Add(-time.Hour), now.Add(-5*time.Minute))
	stale := provisional("stale", now.Add(-2*time.Hour), now.Add(-45*time.Minute))

	out := Finalize([]core.Session{recent, stale}, now, w)

	if !out[0].IsActive() {
		t.Error("session active 5 minutes ago should be Active")
	}

	if out[1].IsActive() {
		t.Fatal("session idle for 45 minutes should be Completed")
	}
	if out[1].Status != core.SessionCompleted {
		t.Errorf("Status = %v, want Completed", out[1].Status)
	}
	wantEnd := now.Add(-45 * time.Minute)
	if out[1].EndedAt == nil || !out[1].EndedAt.Equal(wantEnd) {
		t.Errorf("EndedAt = %v, want last activity %v", out[1].EndedAt, wantEnd)
	}
}

func TestFinalizeMtimeOnlySignal(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	w := DefaultWindows()

	abandoned := core.Session{ID: "abandoned", StartedAt: now.Add(-6 * time.Hour), Status: core.SessionActive}
	SetMeta(&abandoned, MetaSourceMtime, now.Add(-90*time.Minute).Format(time.RFC3339))

	fresh := core.Session{ID: "fresh", StartedAt: now.Add(-10 * time.Minute), Status: core.SessionActive}
	SetMeta(&fresh, MetaSourceMtime, now.Add(-10*time.Minute).Format(time.RFC3339))

	out := Finalize([]core.Session{abandoned, fresh}, now, w)

	if out[0].IsActive() {
		t.Error("session with 90-minute-old mtime should be force-completed")
	}
	if out[0].EndedAt == nil || !out[0].EndedAt.Equal(now.Add(-90*time.Minute)) {
		t.Errorf("EndedAt = %v, want the file mtime", out[0].EndedAt)
	}

	// Inside the stale window, mtime alone keeps the session open.
	if !out[1].IsActive() {
		t.Error("session with fresh mtime should stay Active")
	}
}

func TestMtimeBetweenWindowsIsNotReportedLive(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	w := DefaultWindows()

	idle := core.Session{ID: "idle", StartedAt: now.Add(-3 * time.Hour), Status: core.SessionActive}
	SetMeta(&idle, MetaSourceMtime, now.Add(-45*time.Minute).Format(time.RFC3339))

	out := Finalize([]core.Session{idle}, now, w)

	// Not yet force-completed: the mtime is still inside the stale window.
	if out[0].EndedAt != nil {
		t.Errorf("EndedAt = %v, want nil before the stale window elapses", out[0].EndedAt)
	}

	// But a 45-minute-old signal is outside the activity window, so the
	// session must not surface as live.
	if got := Active(out, now, w, false); len(got) != 0 {
		t.Errorf("session with 45-minute-old mtime reported live: %+v", got)
	}

	fresh := core.Session{ID: "fresh", StartedAt: now.Add(-3 * time.Hour), Status: core.SessionActive}
	SetMeta(&fresh, MetaSourceMtime, now.Add(-10*time.Minute).Format(time.RFC3339))

	got := Active(Finalize([]core.Session{fresh}, now, w), now, w, false)
	if len(got) != 1 {
		t.Fatalf("session with fresh mtime missing from live set")
	}
	if !got[0].LastActivityAt.Equal(now.Add(-10 * time.Minute)) {
		t.Errorf("LastActivityAt = %v, want the mtime", got[0].LastActivityAt)
	}
}

func TestFinalizeLeavesTerminalSessionsAlone(t *testing.T) {
	now := time.Now()
	end := now.Add(-2 * time.Hour)
	done := core.Session{ID: "done", StartedAt: now.Add(-3 * time.Hour), Status: core.SessionCompleted, EndedAt: &end}

	out := Finalize([]core.Session{done}, now, DefaultWindows())
	if !out[0].EndedAt.Equal(end) {
		t.Errorf("terminal session modified: %+v", out[0])
	}
}

func TestActiveSingleWinner(t *testing.T) {
	now := time.Now()

	a := provisional("a", now.Add(-20*time.Minute), now.Add(-10*time.Minute))
	b := provisional("b", now.Add(-25*time.Minute), now.Add(-2*time.Minute))
	a.Usage = core.UsageTotals{InputTokens: 100, OutputTokens: 50, Model: "claude-sonnet-4-5"}

	all := Active([]core.Session{a, b}, now, DefaultWindows(), false)
	if len(all) != 2 {
		t.Fatalf("full set = %d, want 2", len(all))
	}
	if all[0].ID != "b" {
		t.Errorf("most recently active should sort first, got %q", all[0].ID)
	}

	winner := Active([]core.Session{a, b}, now, DefaultWindows(), true)
	if len(winner) != 1 || winner[0].ID != "b" {
		t.Errorf("single winner = %+v, want session b", winner)
	}
}

func TestActiveProjection(t *testing.T) {
	now := time.Now()
	s := provisional("p", now.Add(-15*time.Minute), now.Add(-1*time.Minute))
	s.Usage = core.UsageTotals{InputTokens: 400, OutputTokens: 100, Model: "claude-opus-4-5"}
	s.ProjectPath = "/home/user/proj"

	got := Active([]core.Session{s}, now, DefaultWindows(), true)
	if len(got) != 1 {
		t.Fatal("expected one active session")
	}
	if got[0].Tokens != 500 || got[0].Model != "claude-opus-4-5" || got[0].ProjectPath != "/home/user/proj" {
		t.Errorf("projection mismatch: %+v", got[0])
	}
}
