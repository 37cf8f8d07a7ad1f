package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotSavedMessage announces a persisted roster snapshot. It carries only
// the snapshot id; the worker loads the state itself.
type SnapshotSavedMessage struct {
	SnapshotID   int64     `json:"snapshotId"`
	StoreVersion int64     `json:"storeVersion"`
	Timestamp    time.Time `json:"timestamp"`
	// Changes lists the top level sections that differ from the previous
	// snapshot, e.g. "roster" or "transactions".
	Changes []string `json:"changes,omitempty"`
}

func NewSnapshotSavedMessage(snapshotID, storeVersion int64, changes []string) *SnapshotSavedMessage {
	return &SnapshotSavedMessage{
		SnapshotID:   snapshotID,
		StoreVersion: storeVersion,
		Timestamp:    time.Now(),
		Changes:      changes,
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotSavedMessageFromJSON creates a message from JSON bytes
func SnapshotSavedMessageFromJSON(data []byte) (*SnapshotSavedMessage, error) {
	var msg SnapshotSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
