// Package protocol defines the JSON messages exchanged between clients and replicas.
package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/entity"
)

const (
	TypeJoin   = "join"
	TypeMove   = "move"
	TypeReset  = "reset"
	TypeUpdate = "update"
	TypeWin    = "win"
	TypeDraw   = "draw"
	TypeInfo   = "info"
	TypeError  = "error"
)

// Request is an inbound client message. Row and Col are kept raw and only parsed for "move".
type Request struct {
	Type string          `json:"type"`
	Row  json.RawMessage `json:"row,omitempty"`
	Col  json.RawMessage `json:"col,omitempty"`
}

// NewMove builds a move request. A nil coordinate is left out of the message.
func NewMove(row, col *float64) Request {
	return Request{Type: TypeMove, Row: number(row), Col: number(col)}
}

func number(v *float64) json.RawMessage {
	if v == nil {
		return nil
	}

	return json.RawMessage(strconv.FormatFloat(*v, 'f', -1, 64))
}

// Cell returns the requested coordinates. Anything that is not a number or a numeric string
// is reported as -1 so it fails the bounds check.
func (that *Request) Cell() (float64, float64) {
	return coordinate(that.Row), coordinate(that.Col)
}

func coordinate(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return -1
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}

	return -1
}

// Update carries the full public game state. Seats are never sent to clients.
type Update struct {
	Type     string        `json:"type"`
	Board    entity.Board  `json:"board"`
	NextTurn entity.Cell   `json:"nextTurn"`
	Status   entity.Status `json:"status"`
	Winner   *entity.Cell  `json:"winner"`
	LastMove *entity.Move  `json:"lastMove"`
}

type Win struct {
	Type   string      `json:"type"`
	Winner entity.Cell `json:"winner"`
}

type Draw struct {
	Type string `json:"type"`
}

// Notice is used for info, error and reset messages.
type Notice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Event is the union of every server message, used by readers that do not know the type up front.
type Event struct {
	Type     string        `json:"type"`
	Message  string        `json:"message,omitempty"`
	Board    *entity.Board `json:"board,omitempty"`
	NextTurn entity.Cell   `json:"nextTurn,omitempty"`
	Status   entity.Status `json:"status,omitempty"`
	Winner   entity.Cell   `json:"winner,omitempty"`
	LastMove *entity.Move  `json:"lastMove,omitempty"`
}

func NewUpdate(state *entity.GameState) Update {
	update := Update{
		Type:     TypeUpdate,
		Board:    state.Board,
		NextTurn: state.NextTurn,
		Status:   state.Status,
		LastMove: state.LastMove,
	}

	// no winner goes out as null
	if state.Winner != entity.EmptyCell {
		winner := state.Winner
		update.Winner = &winner
	}

	return update
}

func NewWin(winner entity.Cell) Win {
	return Win{Type: TypeWin, Winner: winner}
}

func NewDraw() Draw {
	return Draw{Type: TypeDraw}
}

func NewInfo(message string) Notice {
	return Notice{Type: TypeInfo, Message: message}
}

func NewError(message string) Notice {
	return Notice{Type: TypeError, Message: message}
}

func NewReset(message string) Notice {
	return Notice{Type: TypeReset, Message: message}
}

type envelope struct {
	Type any             `json:"type"`
	Row  json.RawMessage `json:"row"`
	Col  json.RawMessage `json:"col"`
}

// Decode - parse-or-nil: anything that is not a JSON object with a present type yields nil.
// A type that is not a string is kept as its text so it can be reported as unknown.
func Decode(data []byte) *Request {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}

	kind := typeName(env.Type)
	if kind == "" {
		return nil
	}

	return &Request{Type: kind, Row: env.Row, Col: env.Col}
}

// typeName returns "" for the values a client would treat as no type at all: null, false, 0 and "".
func typeName(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return strconv.FormatBool(t)
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// DecodeEvent - parse-or-nil for server messages.
func DecodeEvent(data []byte) *Event {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil
	}

	if evt.Type == "" {
		return nil
	}

	return &evt
}

func Encode(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}

	return data, nil
}
