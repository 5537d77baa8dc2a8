package entity

import (
	"encoding/json"
	"fmt"
)

// EncodeState serializes the record into the store's string encoding.
func EncodeState(state *GameState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("could not marshal game state: %w", err)
	}

	return data, nil
}

// DecodeState parses a record previously written by EncodeState.
func DecodeState(data []byte) (*GameState, error) {
	var state GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}

	return &state, nil
}
