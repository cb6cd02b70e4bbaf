package scan

import (
	"log"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

// Cache memoizes a chain's raw scan results and invalidates them when
// anything under the watched data directories changes. When the watcher
// cannot be started the cache degrades to rescanning on every call;
// callers never see the difference.
type Cache struct {
	chain Chain
	dirs  []string

	mu      sync.Mutex
	cached  []core.Session
	valid   bool
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewCache(chain Chain, dirs []string) *Cache {
	c := &Cache{chain: chain, dirs: dirs, done: make(chan struct{})}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[scan] %s: watcher unavailable, caching disabled: %v", chain.Tool, err)
		return c
	}

	watched := 0
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if _, statErr := os.Stat(dir); statErr != nil {
			continue
		}
		if addErr := watcher.Add(dir); addErr == nil {
			watched++
		}
	}
	if watched == 0 {
		watcher.Close()
		return c
	}

	c.watcher = watcher
	go c.watch()
	return c
}

// Sessions returns the chain's raw scan output, reusing the cached copy
// while it is valid.
func (c *Cache) Sessions() []core.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watcher == nil || !c.valid {
		c.cached = c.chain.Scan(c.dirs)
		c.valid = c.watcher != nil
	}

	out := make([]core.Session, len(c.cached))
	copy(out, c.cached)
	return out
}

func (c *Cache) watch() {
	for {
		select {
		case <-c.done:
			return
		case _, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			c.invalidate()
		case _, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.invalidate()
		}
	}
}

func (c *Cache) invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

func (c *Cache) Close() {
	close(c.done)
	if c.watcher != nil {
		c.watcher.Close()
	}
}
