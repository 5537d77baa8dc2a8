package websocket

import (
	"log/slog"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/metrics"
)

// Hub - the sessions attached to this replica.
type Hub struct {
	logger   *slog.Logger
	sessions *xsync.MapOf[string, *Session]
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:   logger.With("component", "hub"),
		sessions: xsync.NewMapOf[string, *Session](),
	}
}

func (that *Hub) Add(sess *Session) {
	that.sessions.Store(sess.ID(), sess)
}

func (that *Hub) Remove(id string) {
	that.sessions.Delete(id)
}

func (that *Hub) Len() int {
	return that.sessions.Size()
}

// Broadcast - relays payload unchanged to every session. Sessions that cannot keep up are disconnected.
func (that *Hub) Broadcast(payload []byte) {
	that.sessions.Range(func(id string, sess *Session) bool {
		if sess.Closed() {
			return true
		}

		if !sess.Send(payload) {
			metrics.SlowConsumers.Inc()
			that.logger.Warn("disconnecting slow consumer", "connID", id)
			that.sessions.Delete(id)
			sess.Close()
		}

		return true
	})
}

// CloseAll - disconnects every session, used on shutdown.
func (that *Hub) CloseAll() {
	that.sessions.Range(func(_ string, sess *Session) bool {
		sess.Close()
		return true
	})
}
