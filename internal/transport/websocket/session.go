package websocket

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/config"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/entity"
)

const maxMessageSize = 4096

type phase int

const (
	phaseConnected phase = iota
	phaseJoined
	phaseClosed
)

// seat is the per-connection state machine: Connected (spectator) -> Joined{symbol} -> Closed.
// Only the goroutine reading the connection touches it.
type seat struct {
	phase  phase
	symbol entity.Cell
}

func (that *seat) join(symbol entity.Cell) {
	if that.phase == phaseClosed {
		return
	}

	that.phase = phaseJoined
	that.symbol = symbol
}

func (that *seat) spectate() {
	if that.phase == phaseClosed {
		return
	}

	that.phase = phaseConnected
	that.symbol = entity.EmptyCell
}

func (that *seat) close() {
	that.phase = phaseClosed
	that.symbol = entity.EmptyCell
}

func (that *seat) player() (entity.Cell, bool) {
	return that.symbol, that.phase == phaseJoined
}

// Session - one websocket connection. Outbound messages go through a bounded buffer drained by writePump,
// so a slow peer never blocks the goroutines that enqueue.
type Session struct {
	id     string
	logger *slog.Logger
	conn   *websocket.Conn
	conf   config.Session

	send   chan []byte
	closed atomic.Bool
	ctx    context.Context
	cancel context.CancelFunc

	seat seat
}

func newSession(logger *slog.Logger, conn *websocket.Conn, conf config.Session, id string) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		id:     id,
		logger: logger.With("connID", id),
		conn:   conn,
		conf:   conf,
		send:   make(chan []byte, conf.SendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (that *Session) ID() string {
	return that.id
}

func (that *Session) Closed() bool {
	return that.closed.Load()
}

// Send - enqueues payload without blocking; false means the buffer is full or the session is closed.
func (that *Session) Send(payload []byte) bool {
	if that.closed.Load() {
		return false
	}

	select {
	case that.send <- payload:
		return true
	default:
		return false
	}
}

// Close - idempotent; unblocks both pumps.
func (that *Session) Close() {
	if !that.closed.CompareAndSwap(false, true) {
		return
	}

	that.cancel()
	_ = that.conn.Close()
}

// readPump - delivers every inbound message to dispatch until the peer goes away.
func (that *Session) readPump(dispatch func(data []byte)) {
	defer that.Close()

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(that.conf.ReadDeadline))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(that.conf.ReadDeadline))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if !that.closed.Load() && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				that.logger.Warn("unexpected close", "error", err)
			}

			return
		}

		_ = that.conn.SetReadDeadline(time.Now().Add(that.conf.ReadDeadline))

		dispatch(data)
	}
}

// writePump - the only writer of data frames; also sends heartbeat pings.
func (that *Session) writePump() {
	ticker := time.NewTicker(that.conf.PingInterval)
	defer ticker.Stop()
	defer that.Close()

	for {
		select {
		case <-that.ctx.Done():
			return
		case payload := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(that.conf.WriteTimeout))
			if err := that.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				that.logger.Debug("write failed", "error", err)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(that.conf.WriteTimeout)
			if err := that.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				that.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}
