package modelsync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/janekbaraniewski/agentcost/internal/core"
)

// SQLiteRepository persists the aggregated model table in a local
// SQLite file. Keys follow core.ModelInfo.Key; writes are upserts and
// rows are never deleted.
type SQLiteRepository struct {
	db *sql.DB
}

var _ core.ModelRepository = (*SQLiteRepository)(nil)

func OpenRepository(path string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating repository dir: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("opening model repository: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS models (
		key             TEXT PRIMARY KEY,
		provider        TEXT NOT NULL,
		model           TEXT NOT NULL,
		input_per_mtok  REAL NOT NULL,
		output_per_mtok REAL NOT NULL,
		context_window  INTEGER NOT NULL DEFAULT 0,
		last_synced     TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating models table: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error { return r.db.Close() }

func (r *SQLiteRepository) Upsert(ctx context.Context, m core.ModelInfo) error {
	const stmt = `INSERT INTO models
		(key, provider, model, input_per_mtok, output_per_mtok, context_window, last_synced)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			provider = excluded.provider,
			model = excluded.model,
			input_per_mtok = excluded.input_per_mtok,
			output_per_mtok = excluded.output_per_mtok,
			context_window = excluded.context_window,
			last_synced = excluded.last_synced`

	_, err := r.db.ExecContext(ctx, stmt,
		m.Key(), m.Provider, m.Model,
		m.InputPerMTok, m.OutputPerMTok, m.ContextWindow,
		m.LastSynced.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upserting %s: %w", m.Key(), err)
	}
	return nil
}

func (r *SQLiteRepository) Lookup(ctx context.Context, provider, model string) (core.ModelInfo, bool, error) {
	key := strings.ToLower(provider) + "/" + strings.ToLower(model)

	const stmt = `SELECT provider, model, input_per_mtok, output_per_mtok, context_window, last_synced
		FROM models WHERE key = ?`

	var (
		m      core.ModelInfo
		synced string
	)
	err := r.db.QueryRowContext(ctx, stmt, key).Scan(
		&m.Provider, &m.Model, &m.InputPerMTok, &m.OutputPerMTok, &m.ContextWindow, &synced)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ModelInfo{}, false, nil
	}
	if err != nil {
		return core.ModelInfo{}, false, fmt.Errorf("looking up %s: %w", key, err)
	}
	m.LastSynced, _ = time.Parse(time.RFC3339Nano, synced)
	return m, true, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]core.ModelInfo, error) {
	const stmt = `SELECT provider, model, input_per_mtok, output_per_mtok, context_window, last_synced
		FROM models ORDER BY key`

	rows, err := r.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer rows.Close()

	var models []core.ModelInfo
	for rows.Next() {
		var (
			m      core.ModelInfo
			synced string
		)
		if err := rows.Scan(&m.Provider, &m.Model, &m.InputPerMTok, &m.OutputPerMTok, &m.ContextWindow, &synced); err != nil {
			return nil, fmt.Errorf("scanning model row: %w", err)
		}
		m.LastSynced, _ = time.Parse(time.RFC3339Nano, synced)
		models = append(models, m)
	}
	return models, rows.Err()
}
