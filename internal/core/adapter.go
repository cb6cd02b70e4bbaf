package core

import (
	"context"
	"time"
)

type AdapterStatus string

const (
	AdapterUnknown      AdapterStatus = "unknown"
	AdapterConnected    AdapterStatus = "connected"
	AdapterDisconnected AdapterStatus = "disconnected"
	AdapterError        AdapterStatus = "error"
)

// Adapter is the uniform capability surface over one locally installed
// tool. Read queries never fail on individual corrupt files; they return
// whatever could be recovered. Only Connect reports installation problems
// as an error.
type Adapter interface {
	Tool() ToolType
	Name() string

	// IsInstalled reports whether a known config directory exists or the
	// tool's executable resolves on PATH. It never touches the network.
	IsInstalled() bool

	// DetectVersion asks the tool itself for its version, best effort.
	// Returns "unknown" when no version-looking line can be parsed.
	DetectVersion(ctx context.Context) string

	Connect() error
	Disconnect()
	Status() AdapterStatus
	LastConnected() time.Time

	// HealthCheck is true only while connected and still installed. A
	// failed recheck demotes the adapter to AdapterError.
	HealthCheck() bool

	Sessions() ([]Session, error)
	ActiveSessions() ([]ActiveSession, error)
	Usage(since time.Time) (UsageTotals, error)
	TotalCost(since time.Time) (float64, error)
	SupportedModels() []string
}
