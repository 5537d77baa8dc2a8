package entity

const (
	StatusPlaying Status = "playing"
	StatusWin     Status = "win"
	StatusDraw    Status = "draw"

	PlayerX   Cell = "X"
	PlayerO   Cell = "O"
	EmptyCell Cell = ""
)

// BoardSize is the width and height of the grid.
const BoardSize = 3

// Cell is a single grid position or a player symbol. EmptyCell doubles as "no symbol".
type Cell string

// Status is the lifecycle state of the shared game.
type Status string

type Board [BoardSize][BoardSize]Cell

// Move is the last applied move, kept for client display.
type Move struct {
	Player Cell `json:"player"`
	Row    int  `json:"row"`
	Col    int  `json:"col"`
}

// Players records which connection identity holds each seat.
type Players struct {
	X string `json:"X"`
	O string `json:"O"`
}

// GameState is the single authoritative record shared by all replicas.
type GameState struct {
	Board    Board   `json:"board"`
	NextTurn Cell    `json:"nextTurn"`
	Status   Status  `json:"status"`
	Winner   Cell    `json:"winner"`
	LastMove *Move   `json:"lastMove"`
	Players  Players `json:"players"`
}

func NewGameState() *GameState {
	return &GameState{
		NextTurn: PlayerX,
		Status:   StatusPlaying,
	}
}

// Clone returns a deep copy, so the compute step never mutates a value read from the store.
func (that *GameState) Clone() *GameState {
	next := *that
	if that.LastMove != nil {
		move := *that.LastMove
		next.LastMove = &move
	}

	return &next
}

func (that *GameState) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *GameState) IsFinished() bool {
	return that.Status == StatusWin || that.Status == StatusDraw
}

// Opponent returns the other symbol.
func (that Cell) Opponent() Cell {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that Cell) IsSymbol() bool {
	return that == PlayerX || that == PlayerO
}

func (that Players) Get(symbol Cell) string {
	switch symbol {
	case PlayerX:
		return that.X
	case PlayerO:
		return that.O
	default:
		return ""
	}
}

func (that *Players) Set(symbol Cell, identity string) {
	switch symbol {
	case PlayerX:
		that.X = identity
	case PlayerO:
		that.O = identity
	}
}

// SeatOf returns the symbol held by identity, or EmptyCell.
func (that Players) SeatOf(identity string) Cell {
	switch {
	case identity == "":
		return EmptyCell
	case that.X == identity:
		return PlayerX
	case that.O == identity:
		return PlayerO
	default:
		return EmptyCell
	}
}
