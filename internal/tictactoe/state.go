package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/entity"
)

// ApplyMove - computes the state that follows player's move at (row, col).
// It never mutates current, so a CAS retry can call it again against a fresh read.
func ApplyMove(current *entity.GameState, player entity.Cell, row, col float64) (*entity.GameState, error) {
	if err := validateMove(current, player, row, col); err != nil {
		return nil, err
	}

	r, c := int(row), int(col)

	next := current.Clone()
	next.Board[r][c] = player
	next.LastMove = &entity.Move{Player: player, Row: r, Col: c}

	updateGameStatus(next, player)

	return next, nil
}

// validateMove - checks the move against the current state, in the order clients rely on.
func validateMove(current *entity.GameState, player entity.Cell, row, col float64) error {
	if !current.IsPlaying() {
		return apperror.ErrNotPlaying
	}

	if current.NextTurn != player {
		return fmt.Errorf("%w. Next turn: %s", apperror.ErrWrongTurn, current.NextTurn)
	}

	if !CellInBounds(row, col) {
		return apperror.ErrOutOfBounds
	}

	if current.Board[int(row)][int(col)] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateGameStatus - win is checked before draw, so a move that fills the board and completes a line is a win.
func updateGameStatus(next *entity.GameState, player entity.Cell) {
	if winner := Winner(next.Board); winner != entity.EmptyCell {
		next.Status = entity.StatusWin
		next.Winner = winner
		return
	}

	if IsFull(next.Board) {
		next.Status = entity.StatusDraw
		next.Winner = entity.EmptyCell
		return
	}

	next.NextTurn = player.Opponent()
}

// Reset - a cleared board that keeps the given seats.
func Reset(players entity.Players) *entity.GameState {
	state := entity.NewGameState()
	state.Players = players

	return state
}
