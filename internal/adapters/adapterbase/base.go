// Package adapterbase centralizes the connection state machine shared by
// every tool adapter. Tool packages embed Base and implement only the
// data queries.
package adapterbase

import (
	"log"
	"sync"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

type Base struct {
	tool      core.ToolType
	name      string
	installed func() bool

	mu            sync.Mutex
	status        core.AdapterStatus
	lastConnected time.Time
	lastError     string
}

// New builds a Base for a tool. installed must be cheap and offline; it
// is consulted by Connect and every HealthCheck.
func New(tool core.ToolType, name string, installed func() bool) *Base {
	return &Base{
		tool:      tool,
		name:      name,
		installed: installed,
		status:    core.AdapterUnknown,
	}
}

func (b *Base) Tool() core.ToolType { return b.tool }
func (b *Base) Name() string        { return b.name }

func (b *Base) IsInstalled() bool { return b.installed() }

// Connect verifies the installation and transitions to Connected. The
// only way an adapter surfaces "tool absent" as an error.
func (b *Base) Connect() error {
	if !b.installed() {
		b.mu.Lock()
		b.status = core.AdapterError
		b.lastError = "installation not found"
		b.mu.Unlock()
		return &core.ConnectionError{Tool: b.tool, Reason: "installation not found"}
	}

	b.mu.Lock()
	b.status = core.AdapterConnected
	b.lastConnected = time.Now()
	b.lastError = ""
	b.mu.Unlock()
	return nil
}

// Disconnect always succeeds.
func (b *Base) Disconnect() {
	b.mu.Lock()
	b.status = core.AdapterDisconnected
	b.mu.Unlock()
}

func (b *Base) Status() core.AdapterStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Base) LastConnected() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastConnected
}

// LastError returns the message recorded by the most recent failed
// connect or health check.
func (b *Base) LastError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastError
}

// HealthCheck is true only while Connected and still installed. A failed
// recheck demotes the adapter to Error and records why.
func (b *Base) HealthCheck() bool {
	b.mu.Lock()
	connected := b.status == core.AdapterConnected
	b.mu.Unlock()

	if !connected {
		return false
	}
	if b.installed() {
		return true
	}

	b.mu.Lock()
	b.status = core.AdapterError
	b.lastError = "installation no longer verifies"
	b.mu.Unlock()
	log.Printf("[adapter] %s: health check failed, installation gone", b.tool)
	return false
}
