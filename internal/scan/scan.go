// Package scan normalizes one tool's arbitrary on-disk layout into
// canonical sessions. Each adapter supplies an ordered fallback chain of
// parse strategies; the chain is tried per directory until one yields
// records, results are merged with first-found-wins identity dedupe and
// returned sorted by recency.
package scan

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

// Strategy parses one data directory into zero or more sessions. A
// strategy reports an error only when the directory itself is unusable;
// per-file corruption is skipped internally.
type Strategy struct {
	Name  string
	Parse func(dir string) ([]core.Session, error)
}

// Chain is the ordered fallback chain for one tool.
type Chain struct {
	Tool       core.ToolType
	Strategies []Strategy
}

// Scan runs the chain over every directory. Within a directory the first
// strategy producing at least one session short-circuits the rest, which
// lets a cheap aggregate file avoid expensive line-by-line log scans.
// Sessions from later sources that collide on identity with earlier ones
// are discarded. Output is sorted by start time, most recent first.
func (c Chain) Scan(dirs []string) []core.Session {
	seen := make(map[string]bool)
	var all []core.Session

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		for _, strat := range c.Strategies {
			sessions, err := strat.Parse(dir)
			if err != nil {
				log.Printf("[scan] %s: strategy %s failed on %s: %v", c.Tool, strat.Name, dir, err)
				continue
			}
			if len(sessions) == 0 {
				continue
			}
			for _, s := range sessions {
				if seen[s.ID] {
					continue
				}
				seen[s.ID] = true
				s.Tool = c.Tool
				all = append(all, s)
			}
			break
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].StartedAt.After(all[j].StartedAt)
	})
	return all
}

// subAgentDirNames are directory name conventions for nested delegate
// sessions, excluded from walks so they are not double-counted.
var subAgentDirNames = map[string]bool{
	"subagents":  true,
	"sub-agents": true,
	"sub_agents": true,
	"agents":     true,
	"sidechains": true,
}

// CollectFiles walks dir recursively and returns every file with the
// given extension, skipping sub-agent directories. Walk errors on
// individual entries are skipped, not fatal.
func CollectFiles(dir, ext string) []string {
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && subAgentDirNames[strings.ToLower(d.Name())] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ext) {
			files = append(files, path)
		}
		return nil
	})
	return files
}
