package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameState(t *testing.T) {
	// When: a fresh state is created
	state := NewGameState()

	// Then: the board is empty, X moves first and nobody is seated
	assert.Equal(t, Board{}, state.Board)
	assert.Equal(t, PlayerX, state.NextTurn)
	assert.Equal(t, StatusPlaying, state.Status)
	assert.Equal(t, EmptyCell, state.Winner)
	assert.Nil(t, state.LastMove)
	assert.Equal(t, Players{}, state.Players)
}

func TestGameState_Clone(t *testing.T) {
	t.Run("Clone does not share the board or last move", func(t *testing.T) {
		// Given: a state with a move applied
		state := NewGameState()
		state.Board[0][0] = PlayerX
		state.LastMove = &Move{Player: PlayerX, Row: 0, Col: 0}

		// When: the clone is mutated
		next := state.Clone()
		next.Board[1][1] = PlayerO
		next.LastMove.Row = 1

		// Then: the original is untouched
		assert.Equal(t, EmptyCell, state.Board[1][1])
		assert.Equal(t, 0, state.LastMove.Row)
	})

	t.Run("Clone keeps a nil last move nil", func(t *testing.T) {
		next := NewGameState().Clone()

		assert.Nil(t, next.LastMove)
	})
}

func TestGameState_StatusMethods(t *testing.T) {
	t.Run("Playing is not finished", func(t *testing.T) {
		state := &GameState{Status: StatusPlaying}

		assert.True(t, state.IsPlaying())
		assert.False(t, state.IsFinished())
	})

	t.Run("Win and draw are finished", func(t *testing.T) {
		for _, status := range []Status{StatusWin, StatusDraw} {
			state := &GameState{Status: status}

			assert.False(t, state.IsPlaying())
			assert.True(t, state.IsFinished())
		}
	})
}

func TestCell_Opponent(t *testing.T) {
	assert.Equal(t, PlayerO, PlayerX.Opponent())
	assert.Equal(t, PlayerX, PlayerO.Opponent())
	assert.True(t, PlayerX.IsSymbol())
	assert.False(t, EmptyCell.IsSymbol())
}

func TestPlayers(t *testing.T) {
	t.Run("Set and Get by symbol", func(t *testing.T) {
		// Given: empty seats
		var players Players

		// When: both seats are claimed
		players.Set(PlayerX, "conn-1")
		players.Set(PlayerO, "conn-2")
		players.Set(EmptyCell, "ignored")

		// Then: each symbol maps to its identity
		assert.Equal(t, "conn-1", players.Get(PlayerX))
		assert.Equal(t, "conn-2", players.Get(PlayerO))
		assert.Equal(t, "", players.Get(EmptyCell))
	})

	t.Run("SeatOf finds the held symbol", func(t *testing.T) {
		players := Players{X: "conn-1", O: "conn-2"}

		assert.Equal(t, PlayerX, players.SeatOf("conn-1"))
		assert.Equal(t, PlayerO, players.SeatOf("conn-2"))
		assert.Equal(t, EmptyCell, players.SeatOf("conn-3"))
		assert.Equal(t, EmptyCell, Players{}.SeatOf(""))
	})
}

func TestStateCodec(t *testing.T) {
	t.Run("Encode then decode yields an identical record", func(t *testing.T) {
		// Given: a state with every field populated
		state := &GameState{
			Board: Board{
				{PlayerX, EmptyCell, PlayerO},
				{EmptyCell, PlayerX, EmptyCell},
				{PlayerO, EmptyCell, PlayerX},
			},
			NextTurn: PlayerO,
			Status:   StatusWin,
			Winner:   PlayerX,
			LastMove: &Move{Player: PlayerX, Row: 2, Col: 2},
			Players:  Players{X: "A-1-abc", O: "B-2-def"},
		}

		// When: it goes through the codec
		data, err := EncodeState(state)
		require.NoError(t, err)

		decoded, err := DecodeState(data)
		require.NoError(t, err)

		// Then: nothing is lost
		assert.Equal(t, state, decoded)
	})

	t.Run("Encodes the wire shape clients expect", func(t *testing.T) {
		data, err := EncodeState(NewGameState())
		require.NoError(t, err)

		assert.JSONEq(t, `{
			"board": [["","",""],["","",""],["","",""]],
			"nextTurn": "X",
			"status": "playing",
			"winner": "",
			"lastMove": null,
			"players": {"X": "", "O": ""}
		}`, string(data))
	})

	t.Run("Decode rejects malformed data", func(t *testing.T) {
		_, err := DecodeState([]byte("{not json"))

		require.Error(t, err)
	})
}
