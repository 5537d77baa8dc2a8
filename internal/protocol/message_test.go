package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/entity"
)

func TestDecode(t *testing.T) {
	t.Run("Move with coordinates", func(t *testing.T) {
		req := Decode([]byte(`{"type":"move","row":0,"col":2}`))

		require.NotNil(t, req)
		assert.Equal(t, TypeMove, req.Type)

		row, col := req.Cell()
		assert.InDelta(t, 0, row, 0)
		assert.InDelta(t, 2, col, 0)
	})

	t.Run("Missing coordinates fall out of bounds", func(t *testing.T) {
		req := Decode([]byte(`{"type":"move"}`))

		require.NotNil(t, req)
		row, col := req.Cell()
		assert.InDelta(t, -1, row, 0)
		assert.InDelta(t, -1, col, 0)
	})

	t.Run("Unknown types still decode", func(t *testing.T) {
		req := Decode([]byte(`{"type":"dance"}`))

		require.NotNil(t, req)
		assert.Equal(t, "dance", req.Type)
	})

	t.Run("A type that is not a string is kept as text", func(t *testing.T) {
		req := Decode([]byte(`{"type":5}`))

		require.NotNil(t, req)
		assert.Equal(t, "5", req.Type)
	})

	t.Run("Stray coordinates do not break other requests", func(t *testing.T) {
		req := Decode([]byte(`{"type":"join","row":"x","col":[1]}`))

		require.NotNil(t, req)
		assert.Equal(t, TypeJoin, req.Type)
	})

	t.Run("Coordinates that are not numbers fall out of bounds", func(t *testing.T) {
		for _, raw := range []string{
			`{"type":"move","row":"x","col":1}`,
			`{"type":"move","row":null,"col":1}`,
			`{"type":"move","row":{},"col":1}`,
		} {
			req := Decode([]byte(raw))
			require.NotNil(t, req, raw)

			row, col := req.Cell()
			assert.InDelta(t, -1, row, 0, raw)
			assert.InDelta(t, 1, col, 0, raw)
		}
	})

	t.Run("Numeric strings are accepted as coordinates", func(t *testing.T) {
		req := Decode([]byte(`{"type":"move","row":"1","col":" 2 "}`))

		require.NotNil(t, req)
		row, col := req.Cell()
		assert.InDelta(t, 1, row, 0)
		assert.InDelta(t, 2, col, 0)
	})

	t.Run("Malformed payloads yield nil", func(t *testing.T) {
		for _, raw := range []string{`{not json`, `null`, `[]`, `{}`, `{"type":""}`, `{"type":0}`, `{"type":false}`, `{"type":null}`, ``} {
			assert.Nil(t, Decode([]byte(raw)), raw)
		}
	})
}

func TestNewMove(t *testing.T) {
	row, col := 1.0, 2.5

	tests := []struct {
		name     string
		req      Request
		expected string
	}{
		{"both coordinates", NewMove(&row, &col), `{"type":"move","row":1,"col":2.5}`},
		{"missing coordinates are left out", NewMove(nil, &col), `{"type":"move","col":2.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.req)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestNewUpdate(t *testing.T) {
	// Given: a state with seated players
	state := entity.NewGameState()
	state.Board[0][0] = entity.PlayerX
	state.NextTurn = entity.PlayerO
	state.LastMove = &entity.Move{Player: entity.PlayerX, Row: 0, Col: 0}
	state.Players = entity.Players{X: "conn-1"}

	// When: it is encoded as an update
	data, err := Encode(NewUpdate(state))
	require.NoError(t, err)

	// Then: the public fields are sent and seats are not
	assert.JSONEq(t, `{
		"type": "update",
		"board": [["X","",""],["","",""],["","",""]],
		"nextTurn": "O",
		"status": "playing",
		"winner": null,
		"lastMove": {"player":"X","row":0,"col":0}
	}`, string(data))
}

func TestNewUpdateWinner(t *testing.T) {
	// Given: a finished game
	state := entity.NewGameState()
	state.Status = entity.StatusWin
	state.Winner = entity.PlayerO

	// When: it is encoded as an update
	data, err := Encode(NewUpdate(state))
	require.NoError(t, err)

	// Then: the winner is sent and decodes back into an event
	evt := DecodeEvent(data)
	require.NotNil(t, evt)
	assert.Equal(t, entity.PlayerO, evt.Winner)
	assert.Contains(t, string(data), `"winner":"O"`)
}

func TestNotices(t *testing.T) {
	tests := []struct {
		name     string
		msg      any
		expected string
	}{
		{"info", NewInfo("You are player X"), `{"type":"info","message":"You are player X"}`},
		{"error", NewError("Invalid JSON message"), `{"type":"error","message":"Invalid JSON message"}`},
		{"reset", NewReset("Game reset"), `{"type":"reset","message":"Game reset"}`},
		{"win", NewWin(entity.PlayerO), `{"type":"win","winner":"O"}`},
		{"draw", NewDraw(), `{"type":"draw"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.msg)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestDecodeEvent(t *testing.T) {
	t.Run("Update", func(t *testing.T) {
		data, err := Encode(NewUpdate(entity.NewGameState()))
		require.NoError(t, err)

		evt := DecodeEvent(data)

		require.NotNil(t, evt)
		assert.Equal(t, TypeUpdate, evt.Type)
		require.NotNil(t, evt.Board)
		assert.Equal(t, entity.Board{}, *evt.Board)
		assert.Equal(t, entity.StatusPlaying, evt.Status)
	})

	t.Run("Garbage", func(t *testing.T) {
		assert.Nil(t, DecodeEvent([]byte("nope")))
	})
}
