package backend

import (
	"context"
	"slices"

	"teambudget/internal/core"
)

// Backend is what the server needs from persistence: the snapshot to start
// from, a store.PersistFunc, and a readiness probe.
type Backend interface {
	Load(ctx context.Context) (core.RosterState, bool, error)
	Persist(ctx context.Context, version int64, state core.RosterState) error
	Ready(ctx context.Context) error
}

type CleanupFunc func() error

// BackendResult pairs a backend with the function releasing its database
// and broker connections.
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config selects and configures the snapshot repository.
type Config struct {
	Type BackendType

	SQLiteDBPath string
	// DataDirectory is where the memory backend seeds from and writes
	// state.json; empty keeps snapshots in memory only.
	DataDirectory string
	// Retention is how many snapshots survive each save; zero keeps all.
	Retention int

	// Empty AMQPURL disables snapshot events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

var backendTypes = []BackendType{SQLiteBackend, MemoryBackend}

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	return slices.Contains(backendTypes, bt)
}
