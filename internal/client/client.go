// Package client is the interactive text client used to play against a replica.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/entity"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/protocol"
)

var ErrUnknownCommand = errors.New("Commands: join | reset | <row col>")

const playerPrefix = "You are player "

// Client - keeps the last known state and this connection's symbol, and prints every event.
type Client struct {
	out    io.Writer
	symbol entity.Cell
	state  *entity.GameState
}

func New(out io.Writer) *Client {
	return &Client{
		out:   out,
		state: entity.NewGameState(),
	}
}

// Dial - opens a websocket connection to a replica.
func Dial(ctx context.Context, url string) (*websocket.Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	return conn, nil
}

// Run - sends commands read from in and prints server events until the connection or ctx ends.
func (that *Client) Run(ctx context.Context, conn *websocket.Conn, in io.Reader) error {
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	fmt.Fprintf(that.out, "Connected to %s\n", conn.RemoteAddr())
	fmt.Fprintln(that.out, "Type 'join' to become a player (X or O), or watch as spectator.")

	go that.readCommands(conn, in)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Fprintln(that.out, "Disconnected.")

			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}

			return fmt.Errorf("connection lost: %w", err)
		}

		evt := protocol.DecodeEvent(data)
		if evt == nil {
			continue
		}

		that.Handle(evt)
	}
}

func (that *Client) readCommands(conn *websocket.Conn, in io.Reader) {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		payload, err := ParseCommand(line)
		if err != nil {
			fmt.Fprintln(that.out, err)
			continue
		}

		if err = conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// Handle - applies one server event to the local view and prints it.
func (that *Client) Handle(evt *protocol.Event) {
	switch evt.Type {
	case protocol.TypeInfo:
		fmt.Fprintf(that.out, "info: %s\n", evt.Message)

		if symbol, ok := strings.CutPrefix(evt.Message, playerPrefix); ok {
			that.symbol = entity.Cell(symbol)
		}
	case protocol.TypeError:
		fmt.Fprintf(that.out, "error: %s\n", evt.Message)
	case protocol.TypeUpdate:
		if evt.Board != nil {
			that.state.Board = *evt.Board
		}
		that.state.NextTurn = evt.NextTurn
		that.state.Status = evt.Status
		that.state.Winner = evt.Winner
		that.state.LastMove = evt.LastMove

		RenderBoard(that.out, that.state.Board)

		if move := that.state.LastMove; move != nil {
			fmt.Fprintf(that.out, "Last move: %s -> (%d, %d)\n", move.Player, move.Row, move.Col)
		}

		that.renderStatus()
	case protocol.TypeWin:
		fmt.Fprintf(that.out, "WIN: %s\n", evt.Winner)
	case protocol.TypeDraw:
		fmt.Fprintln(that.out, "DRAW")
	case protocol.TypeReset:
		fmt.Fprintf(that.out, "reset: %s\n", lo.Ternary(evt.Message != "", evt.Message, "Game reset"))
	}
}

func (that *Client) renderStatus() {
	switch that.state.Status {
	case entity.StatusWin:
		fmt.Fprintf(that.out, "Winner: %s\n", that.state.Winner)
	case entity.StatusDraw:
		fmt.Fprintln(that.out, "Draw!")
	case entity.StatusPlaying:
		role := lo.Ternary(that.symbol.IsSymbol(), fmt.Sprintf("(you are %s)", that.symbol), "(spectator)")
		fmt.Fprintf(that.out, "Next turn: %s %s\n", that.state.NextTurn, role)

		if that.symbol.IsSymbol() && that.state.NextTurn == that.symbol {
			fmt.Fprintln(that.out, "Your move: type row col (e.g., 1 2)")
		}
	}
}

// RenderBoard - the grid with row and column headers.
func RenderBoard(w io.Writer, board entity.Board) {
	row := func(r int) string {
		cells := lo.Map(board[r][:], func(c entity.Cell, _ int) string {
			return lo.Ternary(c == entity.EmptyCell, " ", string(c))
		})

		return fmt.Sprintf("%d %s ", r, strings.Join(cells, " | "))
	}

	separator := "  ---+---+---"

	fmt.Fprintln(w)
	fmt.Fprintln(w, "   0   1   2")
	fmt.Fprintln(w, row(0))
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, row(1))
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, row(2))
	fmt.Fprintln(w)
}

// ParseCommand - turns one input line into a request payload.
func ParseCommand(line string) ([]byte, error) {
	fields := strings.Fields(line)

	switch {
	case len(fields) == 1 && fields[0] == protocol.TypeJoin:
		return protocol.Encode(protocol.Request{Type: protocol.TypeJoin})
	case len(fields) == 1 && fields[0] == protocol.TypeReset:
		return protocol.Encode(protocol.Request{Type: protocol.TypeReset})
	case len(fields) == 2:
		return protocol.Encode(protocol.NewMove(coordinate(fields[0]), coordinate(fields[1])))
	default:
		return nil, ErrUnknownCommand
	}
}

// coordinate - nil for anything that is not a finite number; the server then rejects the cell.
func coordinate(field string) *float64 {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}
