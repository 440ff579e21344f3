package game

import (
	"encoding/json"
	"fmt"
)

// EncodeSnapshot serializes a state to the persisted JSON snapshot.
//
// Transient fields are excluded by their struct tags, so a decoded snapshot
// never carries readiness or dirty flags.
func EncodeSnapshot(s *GameState) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("encode snapshot: nil state")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeRaw parses a persisted snapshot without reconciling it against a
// catalog. Use catalog.Decode to obtain a playable state.
func DecodeRaw(data []byte) (*GameState, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode snapshot: empty payload")
	}
	var s GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}
