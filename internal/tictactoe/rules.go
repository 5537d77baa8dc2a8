package tictactoe

import (
	"math"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/entity"
)

type cellPos struct {
	row, col int
}

// winLines is scanned in order: rows, then columns, then diagonals.
var winLines = [8][3]cellPos{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// CellInBounds - true iff both coordinates are integers in [0, BoardSize).
func CellInBounds(row, col float64) bool {
	return isIndex(row) && isIndex(col)
}

func isIndex(v float64) bool {
	return v == math.Trunc(v) && v >= 0 && v < entity.BoardSize
}

// Winner - returns the symbol of the first completed line, or EmptyCell.
func Winner(board entity.Board) entity.Cell {
	for _, line := range winLines {
		a := board[line[0].row][line[0].col]
		if a == entity.EmptyCell {
			continue
		}

		if a == board[line[1].row][line[1].col] && a == board[line[2].row][line[2].col] {
			return a
		}
	}

	return entity.EmptyCell
}

// IsFull - true iff no cell is empty.
func IsFull(board entity.Board) bool {
	for _, row := range board {
		for _, cell := range row {
			if cell == entity.EmptyCell {
				return false
			}
		}
	}

	return true
}
