package cursor

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/janekbaraniewski/agentcost/internal/core"
	"github.com/janekbaraniewski/agentcost/internal/scan"
)

const composerKey = "composer.composerData"

// composerData is the blob Cursor stores under composer.composerData in
// the ItemTable key-value store. Timestamps are epoch milliseconds.
type composerData struct {
	AllComposers []struct {
		ComposerID    string `json:"composerId"`
		Name          string `json:"name"`
		CreatedAt     int64  `json:"createdAt"`
		LastUpdatedAt int64  `json:"lastUpdatedAt"`
	} `json:"allComposers"`
}

func stateDBStrategy() scan.Strategy {
	return scan.Strategy{Name: "state-db", Parse: parseStateDB}
}

func parseStateDB(dir string) ([]core.Session, error) {
	path := stateDBPath(dir)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()

	var value []byte
	err = db.QueryRow("SELECT value FROM ItemTable WHERE key = ?", composerKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", path, err)
	}

	var data composerData
	if err := json.Unmarshal(value, &data); err != nil {
		return nil, fmt.Errorf("parsing composer data: %w", err)
	}

	var sessions []core.Session
	for _, c := range data.AllComposers {
		if c.CreatedAt <= 0 {
			continue
		}
		s := core.Session{
			ID:        scan.ResolveSessionID(c.ComposerID, ""),
			StartedAt: time.UnixMilli(c.CreatedAt).UTC(),
			Status:    core.SessionActive,
			// Cursor tracks requests, not tokens; each composer is one
			// billable conversation.
			Usage: core.UsageTotals{Messages: 1, Model: "cursor-included"},
		}
		if c.LastUpdatedAt > 0 {
			last := time.UnixMilli(c.LastUpdatedAt).UTC()
			scan.SetMeta(&s, scan.MetaLastActivity, last.Format(time.RFC3339Nano))
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
