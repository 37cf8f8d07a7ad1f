// Package backup reads and writes the roster state snapshot format shared by
// local persistence and user backup files.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"teambudget/internal/core"
)

// ErrInvalidBackup is returned when a backup cannot be parsed. The state the
// caller holds must be left untouched.
var ErrInvalidBackup = errors.New("invalid backup file")

// maxBackupSize bounds how much of a backup stream is read.
const maxBackupSize = 16 << 20

// Decode parses a snapshot. Missing collections become empty, missing team
// fields keep their defaults and the fee schedule is merged over the default
// schedule key by key, so partial files stay valid.
func Decode(r io.Reader) (core.RosterState, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBackupSize))
	if err != nil {
		return core.RosterState{}, fmt.Errorf("read backup: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (core.RosterState, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return core.RosterState{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidBackup)
	}
	state := core.DefaultState()
	if err := json.Unmarshal(data, &state); err != nil {
		return core.RosterState{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	state.Normalize()
	return state, nil
}

// Import parses a user supplied backup file. The returned state is meant to
// replace the current one wholesale; nothing is merged with existing data.
func Import(r io.Reader) (core.RosterState, error) {
	state, err := Decode(r)
	if err != nil {
		return core.RosterState{}, err
	}
	return state, nil
}

// Encode writes s in the snapshot format.
func Encode(w io.Writer, s core.RosterState) error {
	s = s.Clone()
	s.Normalize()
	if err := json.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// EncodeBytes is Encode into a byte slice.
func EncodeBytes(s core.RosterState) ([]byte, error) {
	s = s.Clone()
	s.Normalize()
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}

// FileName is the download name of a backup taken at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("TitansBackup_%s.json", t.Format(core.DateLayout))
}
