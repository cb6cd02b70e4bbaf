// Package config loads and saves the settings file. Everything has a
// working default; a missing file is not an error and a corrupt file
// falls back to defaults with the parse error reported.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

type SyncConfig struct {
	IntervalHours    int      `json:"interval_hours"`
	HistoryRetention int      `json:"history_retention"`
	ConflictPolicy   string   `json:"conflict_policy"`
	EnabledProviders []string `json:"enabled_providers"`
}

type SessionConfig struct {
	ActivityWindowMinutes int `json:"activity_window_minutes"`
	StaleWindowMinutes    int `json:"stale_window_minutes"`
}

type Config struct {
	Sync     SyncConfig        `json:"sync"`
	Sessions SessionConfig     `json:"sessions"`
	DataDirs map[string]string `json:"data_dirs,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Sync: SyncConfig{
			IntervalHours:    6,
			HistoryRetention: 50,
			ConflictPolicy:   string(core.OfficialFirst),
			EnabledProviders: []string{"anthropic", "openrouter", "litellm"},
		},
		Sessions: SessionConfig{
			ActivityWindowMinutes: 30,
			StaleWindowMinutes:    60,
		},
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "agentcost")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "agentcost")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

// RepositoryPath is where the synced model price table lives.
func RepositoryPath() string {
	return filepath.Join(ConfigDir(), "models.db")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Sync.IntervalHours <= 0 {
		cfg.Sync.IntervalHours = 6
	}
	if cfg.Sync.HistoryRetention <= 0 {
		cfg.Sync.HistoryRetention = 50
	}
	if !validPolicy(cfg.Sync.ConflictPolicy) {
		cfg.Sync.ConflictPolicy = string(core.OfficialFirst)
	}
	if len(cfg.Sync.EnabledProviders) == 0 {
		cfg.Sync.EnabledProviders = DefaultConfig().Sync.EnabledProviders
	}
	if cfg.Sessions.ActivityWindowMinutes <= 0 {
		cfg.Sessions.ActivityWindowMinutes = 30
	}
	if cfg.Sessions.StaleWindowMinutes < cfg.Sessions.ActivityWindowMinutes {
		cfg.Sessions.StaleWindowMinutes = cfg.Sessions.ActivityWindowMinutes * 2
	}

	return cfg, nil
}

func validPolicy(p string) bool {
	switch core.ConflictResolution(p) {
	case core.OfficialFirst, core.MostRecent, core.LowestPrice, core.HighestContextWindow:
		return true
	}
	return false
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c Config) SyncInterval() time.Duration {
	return time.Duration(c.Sync.IntervalHours) * time.Hour
}

func (c Config) ActivityWindow() time.Duration {
	return time.Duration(c.Sessions.ActivityWindowMinutes) * time.Minute
}

func (c Config) StaleWindow() time.Duration {
	return time.Duration(c.Sessions.StaleWindowMinutes) * time.Minute
}

// DataDir returns the configured data directory override for a tool, or
// empty when the tool should auto-detect.
func (c Config) DataDir(tool core.ToolType) string {
	return c.DataDirs[string(tool)]
}
