package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"teambudget/internal/backup"
	"teambudget/internal/core"
	"teambudget/internal/log"

	_ "modernc.org/sqlite"
)

// SnapshotInfo describes a stored snapshot without its body.
type SnapshotInfo struct {
	ID           int64      `json:"id"`
	StoreVersion int64      `json:"storeVersion"`
	CreatedAt    time.Time  `json:"createdAt"`
	Size         int        `json:"size"`
	SyncedAt     *time.Time `json:"syncedAt,omitempty"`
	SyncError    string     `json:"syncError,omitempty"`
}

// SQLiteRepository keeps every saved roster state as a versioned JSON
// snapshot. The snapshot id is the version published to the sync worker.
type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if logger == nil {
		logger = log.Nop()
	}
	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage),
		now:    time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save stores s and returns the new snapshot id.
func (r *SQLiteRepository) Save(ctx context.Context, storeVersion int64, s core.RosterState) (int64, error) {
	body, err := backup.EncodeBytes(s)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshots (store_version, body, created_at) VALUES (?, ?, ?)`,
		storeVersion, string(body), r.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id: %w", err)
	}

	r.logger.DebugContext(ctx, "Snapshot saved to SQLite",
		"snapshot_id", id,
		log.FieldVersion, storeVersion,
		"bytes", len(body))
	return id, nil
}

// Load returns the most recent snapshot. ok is false on an empty database.
func (r *SQLiteRepository) Load(ctx context.Context) (core.RosterState, bool, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RosterState{}, false, nil
	}
	if err != nil {
		return core.RosterState{}, false, fmt.Errorf("load latest snapshot: %w", err)
	}
	s, err := backup.DecodeBytes([]byte(body))
	if err != nil {
		return core.RosterState{}, false, fmt.Errorf("decode latest snapshot: %w", err)
	}
	return s, true, nil
}

// Get returns snapshot id.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.RosterState, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RosterState{}, fmt.Errorf("snapshot %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.RosterState{}, fmt.Errorf("get snapshot %d: %w", id, err)
	}
	s, err := backup.DecodeBytes([]byte(body))
	if err != nil {
		return core.RosterState{}, fmt.Errorf("decode snapshot %d: %w", id, err)
	}
	return s, nil
}

// LatestID is the id of the newest snapshot, 0 when there is none.
func (r *SQLiteRepository) LatestID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(id) FROM snapshots`).Scan(&id); err != nil {
		return 0, fmt.Errorf("latest snapshot id: %w", err)
	}
	return id.Int64, nil
}

// List returns up to limit snapshots, newest first.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]SnapshotInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, store_version, created_at, length(body), synced_at, sync_error
		   FROM snapshots ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var (
			info      SnapshotInfo
			createdAt int64
			syncedAt  sql.NullInt64
			syncError sql.NullString
		)
		if err := rows.Scan(&info.ID, &info.StoreVersion, &createdAt, &info.Size, &syncedAt, &syncError); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		info.CreatedAt = time.UnixMilli(createdAt).UTC()
		if syncedAt.Valid {
			t := time.UnixMilli(syncedAt.Int64).UTC()
			info.SyncedAt = &t
		}
		info.SyncError = syncError.String
		out = append(out, info)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep snapshots. keep <= 0 disables pruning.
func (r *SQLiteRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	if n > 0 {
		r.logger.InfoContext(ctx, "Pruned old snapshots", "deleted", n, "kept", keep)
	}
	return n, nil
}

// MarkSynced records a successful spreadsheet sync of snapshot id.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE snapshots SET synced_at = ?, sync_error = NULL WHERE id = ?`, r.now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("mark snapshot %d synced: %w", id, err)
	}
	return nil
}

// MarkSyncError records why snapshot id could not be synced.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64, syncErr error) error {
	msg := ""
	if syncErr != nil {
		msg = syncErr.Error()
	}
	_, err := r.db.ExecContext(ctx, `UPDATE snapshots SET sync_error = ? WHERE id = ?`, msg, id)
	if err != nil {
		return fmt.Errorf("mark snapshot %d sync error: %w", id, err)
	}
	return nil
}

// LastSyncedID is the newest snapshot already pushed to the spreadsheet.
func (r *SQLiteRepository) LastSyncedID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT MAX(id) FROM snapshots WHERE synced_at IS NOT NULL`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("last synced snapshot: %w", err)
	}
	return id.Int64, nil
}
