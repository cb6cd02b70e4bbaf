package adapterbase

import (
	"errors"
	"testing"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

func TestConnectLifecycle(t *testing.T) {
	installed := true
	b := New(core.ToolCodex, "Codex CLI", func() bool { return installed })

	if b.Status() != core.AdapterUnknown {
		t.Errorf("initial status = %v, want unknown", b.Status())
	}

	if err := b.Connect(); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if b.Status() != core.AdapterConnected {
		t.Errorf("status = %v, want connected", b.Status())
	}
	if b.LastConnected().IsZero() {
		t.Error("LastConnected not stamped")
	}
	if !b.HealthCheck() {
		t.Error("HealthCheck() = false while connected and installed")
	}

	b.Disconnect()
	if b.Status() != core.AdapterDisconnected {
		t.Errorf("status = %v, want disconnected", b.Status())
	}
	if b.HealthCheck() {
		t.Error("HealthCheck() = true while disconnected")
	}
}

func TestConnectFailsWhenNotInstalled(t *testing.T) {
	b := New(core.ToolCursor, "Cursor", func() bool { return false })

	err := b.Connect()
	if err == nil {
		t.Fatal("Connect() should fail for missing installation")
	}
	var connErr *core.ConnectionError
	if !errors.As(err, &connErr) {
		t.Errorf("error type = %T, want *core.ConnectionError", err)
	}
	if !errors.Is(err, core.ErrNotInstalled) {
		t.Error("connection error should unwrap to ErrNotInstalled")
	}
}

func TestHealthCheckDemotesToError(t *testing.T) {
	installed := true
	b := New(core.ToolClaudeCode, "Claude Code", func() bool { return installed })
	if err := b.Connect(); err != nil {
		t.Fatal(err)
	}

	installed = false
	if b.HealthCheck() {
		t.Fatal("HealthCheck() = true after installation disappeared")
	}
	if b.Status() != core.AdapterError {
		t.Errorf("status = %v, want error", b.Status())
	}
	if b.LastError() == "" {
		t.Error("failed health check should record an error message")
	}
}
