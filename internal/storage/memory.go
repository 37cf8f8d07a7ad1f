package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"teambudget/internal/backup"
	"teambudget/internal/core"
)

// StateFileName is the file a MemoryRepository mirrors its latest snapshot to.
const StateFileName = "state.json"

type memSnapshot struct {
	info SnapshotInfo
	body []byte
}

// MemoryRepository keeps snapshots in process memory. When dir is set the
// latest snapshot is also written to dir/state.json and read back on start.
type MemoryRepository struct {
	mu     sync.Mutex
	dir    string
	nextID int64
	snaps  []memSnapshot
	now    func() time.Time
}

// NewMemoryRepository creates a repository seeded from dir/state.json when
// the file exists. An empty dir keeps everything in memory only.
func NewMemoryRepository(dir string) (*MemoryRepository, error) {
	r := &MemoryRepository{dir: dir, nextID: 1, now: time.Now}
	if dir == "" {
		return r, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, StateFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed state: %w", err)
	}
	if _, err := backup.DecodeBytes(data); err != nil {
		return nil, fmt.Errorf("seed state %s: %w", filepath.Join(dir, StateFileName), err)
	}
	r.append(0, data)
	return r, nil
}

func (r *MemoryRepository) append(storeVersion int64, body []byte) int64 {
	id := r.nextID
	r.nextID++
	r.snaps = append(r.snaps, memSnapshot{
		info: SnapshotInfo{ID: id, StoreVersion: storeVersion, CreatedAt: r.now().UTC(), Size: len(body)},
		body: body,
	})
	return id
}

func (r *MemoryRepository) Save(_ context.Context, storeVersion int64, s core.RosterState) (int64, error) {
	body, err := backup.EncodeBytes(s)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dir != "" {
		if err := writeFileAtomic(filepath.Join(r.dir, StateFileName), body); err != nil {
			return 0, err
		}
	}
	return r.append(storeVersion, body), nil
}

func (r *MemoryRepository) Load(_ context.Context) (core.RosterState, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return core.RosterState{}, false, nil
	}
	s, err := backup.DecodeBytes(r.snaps[len(r.snaps)-1].body)
	if err != nil {
		return core.RosterState{}, false, err
	}
	return s, true, nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (core.RosterState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return core.RosterState{}, fmt.Errorf("snapshot %d: %w", id, core.ErrNotFound)
	}
	return backup.DecodeBytes(r.snaps[i].body)
}

func (r *MemoryRepository) LatestID(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return 0, nil
	}
	return r.snaps[len(r.snaps)-1].info.ID, nil
}

func (r *MemoryRepository) List(_ context.Context, limit int) ([]SnapshotInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	out := make([]SnapshotInfo, 0, min(limit, len(r.snaps)))
	for i := len(r.snaps) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.snaps[i].info)
	}
	return out, nil
}

func (r *MemoryRepository) Prune(_ context.Context, keep int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if keep <= 0 || len(r.snaps) <= keep {
		return 0, nil
	}
	n := len(r.snaps) - keep
	r.snaps = append([]memSnapshot(nil), r.snaps[n:]...)
	return int64(n), nil
}

func (r *MemoryRepository) MarkSynced(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.index(id); i >= 0 {
		t := r.now().UTC()
		r.snaps[i].info.SyncedAt = &t
		r.snaps[i].info.SyncError = ""
	}
	return nil
}

func (r *MemoryRepository) MarkSyncError(_ context.Context, id int64, syncErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.index(id); i >= 0 && syncErr != nil {
		r.snaps[i].info.SyncError = syncErr.Error()
	}
	return nil
}

func (r *MemoryRepository) LastSyncedID(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.snaps) - 1; i >= 0; i-- {
		if r.snaps[i].info.SyncedAt != nil {
			return r.snaps[i].info.ID, nil
		}
	}
	return 0, nil
}

func (r *MemoryRepository) Close() error { return nil }

func (r *MemoryRepository) index(id int64) int {
	for i := range r.snaps {
		if r.snaps[i].info.ID == id {
			return i
		}
	}
	return -1
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
