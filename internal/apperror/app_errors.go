package apperror

import (
	"errors"
	"fmt"
)

// Messages are sent to clients verbatim.
//
// Validation errors: returned to the requester only, never published, never mutate state.
var (
	ErrStateMissing = errors.New("State missing")
	ErrNotPlaying   = errors.New("Game is not in playing state. Wait for reset.")
	ErrWrongTurn    = errors.New("Not your turn")
	ErrOutOfBounds  = errors.New("Invalid cell. Use row/col in 0..2")
	ErrCellOccupied = errors.New("Cell already occupied")
)

// Request errors raised by the gateway before the store is touched.
var (
	ErrInvalidMessage = errors.New("Invalid JSON message")
	ErrUnknownType    = errors.New("Unknown type")
	ErrNotPlayer      = errors.New("You are not assigned a player (spectator). Type join first (if slots free).")
	ErrGameFull       = errors.New("Game is full (2 players already). You are a spectator.")
)

// IsValidation reports whether err is a rule violation rather than an infrastructure failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNotPlaying) ||
		errors.Is(err, ErrWrongTurn) ||
		errors.Is(err, ErrOutOfBounds) ||
		errors.Is(err, ErrCellOccupied)
}

// IsRequest reports whether err was raised by the gateway before the store was touched.
func IsRequest(err error) bool {
	return errors.Is(err, ErrInvalidMessage) ||
		errors.Is(err, ErrUnknownType) ||
		errors.Is(err, ErrNotPlayer) ||
		errors.Is(err, ErrGameFull)
}

// ClientMessage - the text sent to the requesting client for err.
// Rule violations and request errors are sent as is; anything else is reported as a server error.
func ClientMessage(err error) string {
	switch {
	case errors.Is(err, ErrStateMissing):
		return ErrStateMissing.Error()
	case IsValidation(err), IsRequest(err):
		return err.Error()
	default:
		return fmt.Sprintf("Server error: %v", err)
	}
}
