// Package store owns the live roster state. Every accepted mutation is
// applied to a copy, recomputed, swapped in and handed to the persistence
// callback.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"teambudget/internal/core"
	"teambudget/internal/engine"
	"teambudget/internal/log"
)

// ErrPersist wraps persistence callback failures. The in-memory mutation has
// already been applied when it is returned.
var ErrPersist = errors.New("persist snapshot")

// PersistFunc receives every new snapshot together with the store version.
type PersistFunc func(ctx context.Context, version int64, s core.RosterState) error

// ConfirmFunc answers a confirmation prompt for a destructive action.
type ConfirmFunc func(prompt string) bool

// Confirmed always agrees.
func Confirmed(string) bool { return true }

// Declined always refuses.
func Declined(string) bool { return false }

// Recorder observes store activity; the metrics package implements it.
type Recorder interface {
	ObserveMutation(op string, elapsed time.Duration, r engine.Result)
	PersistFailed(op string)
}

type Option func(*Store)

// WithPersist sets the persistence callback.
func WithPersist(fn PersistFunc) Option {
	return func(s *Store) { s.persist = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentStore) }
}

func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// WithClock overrides the clock used for default transaction dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	state    core.RosterState
	result   engine.Result
	version  int64
	lastErr  error
	ids      *core.IDGenerator
	persist  PersistFunc
	recorder Recorder
	logger   *log.Logger
	now      func() time.Time
}

// New creates a store holding initial. The initial state is not persisted.
func New(initial core.RosterState, opts ...Option) *Store {
	s := &Store{
		ids:    core.NewIDGenerator(),
		logger: log.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	initial = initial.Clone()
	initial.Normalize()
	s.state = initial
	s.result = engine.Compute(initial)
	s.ids.Observe(initial.MaxID())
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() core.RosterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *Store) Result() engine.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// View returns the snapshot, result and version read under one lock.
func (s *Store) View() (core.RosterState, engine.Result, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone(), s.result, s.version
}

// Version increments on every accepted mutation.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// LastPersistError is the error of the most recent persistence attempt.
func (s *Store) LastPersistError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) apply(ctx context.Context, op string, fn func(*core.RosterState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	next.Normalize()

	s.state = next
	s.result = engine.Compute(next)
	s.version++

	if s.recorder != nil {
		s.recorder.ObserveMutation(op, time.Since(start), s.result)
	}
	s.logger.DebugContext(ctx, "State updated",
		log.NewFields().
			WithOperation(op).
			WithVersion(s.version).
			WithSolvency(s.result.PlayerCount, s.result.PerPlayerShare, s.result.Actuals.BankBalance).
			ToSlice()...)

	if s.persist == nil {
		return nil
	}
	s.lastErr = s.persist(ctx, s.version, next.Clone())
	if s.lastErr != nil {
		if s.recorder != nil {
			s.recorder.PersistFailed(op)
		}
		s.logger.ErrorContext(ctx, "Failed to persist snapshot",
			log.FieldOperation, op,
			log.FieldVersion, s.version,
			log.FieldError, s.lastErr)
		return fmt.Errorf("%w: %v", ErrPersist, s.lastErr)
	}
	return nil
}

func confirm(fn ConfirmFunc, prompt string) error {
	if fn == nil || !fn(prompt) {
		return core.ErrNotConfirmed
	}
	return nil
}

// UpdateTeam replaces the team metadata.
func (s *Store) UpdateTeam(ctx context.Context, t core.TeamSettings) error {
	return s.apply(ctx, "update_team", func(st *core.RosterState) error {
		st.TeamSettings = t
		return nil
	})
}

func (s *Store) SetExtraGames(ctx context.Context, n core.Amount) error {
	return s.apply(ctx, "set_extra_games", func(st *core.RosterState) error {
		st.ExtraGames = n
		return nil
	})
}

// UpdateFee sets one fee schedule entry by its JSON key.
func (s *Store) UpdateFee(ctx context.Context, key string, v core.Amount) error {
	return s.apply(ctx, "update_fee", func(st *core.RosterState) error {
		f, ok := st.FeeStructure.Field(key)
		if !ok {
			return fmt.Errorf("fee %q: %w", key, core.ErrNotFound)
		}
		*f = v
		return nil
	})
}
