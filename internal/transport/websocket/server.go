package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/config"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/entity"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/protocol"
)

const bufferSize = 1024

type gameManager interface {
	Snapshot(ctx context.Context) (*entity.GameState, error)
	Join(ctx context.Context, identity string) (entity.Cell, *entity.GameState, error)
	AnnounceJoin(ctx context.Context, symbol entity.Cell, state *entity.GameState) error
	Move(ctx context.Context, player entity.Cell, row, col float64) (*entity.GameState, error)
	Reset(ctx context.Context) error
	Leave(ctx context.Context, identity string) error
}

type handlerFunc func(ctx context.Context, sess *Session, req *protocol.Request)

// Server - accepts websocket connections and runs each one as a Session.
type Server struct {
	logger    *slog.Logger
	manager   gameManager
	hub       *Hub
	upgrader  websocket.Upgrader
	conf      config.Session
	replicaID string
	port      string

	handlers map[string]handlerFunc
	active   sync.WaitGroup
}

func New(logger *slog.Logger, manager gameManager, hub *Hub, replicaID, port string, conf config.Session) *Server {
	server := &Server{
		logger:    logger.With("component", "websocket", "replica", replicaID),
		manager:   manager,
		hub:       hub,
		conf:      conf,
		replicaID: replicaID,
		port:      port,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  bufferSize,
			WriteBufferSize: bufferSize,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[protocol.TypeJoin] = server.handleJoin
	server.handlers[protocol.TypeMove] = server.handleMove
	server.handlers[protocol.TypeReset] = server.handleReset

	return server
}

// Register - serves websocket upgrades on "/" and "/ws". Sessions live until ctx is done or the peer leaves.
func (that *Server) Register(ctx context.Context, router *mux.Router) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	}

	router.HandleFunc("/", handler)
	router.HandleFunc("/ws", handler)
}

// upgradeToWebSocket - runs one connection from handshake to release.
func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	// counted while the request is still tracked by http.Server, so Wait cannot miss it
	that.active.Add(1)
	defer that.active.Done()

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	sess := newSession(that.logger, conn, that.conf, pkg.GenerateConnectionID(that.replicaID))
	that.hub.Add(sess)

	log.Info("connection established", "connID", sess.ID(), "remote", r.RemoteAddr)

	go sess.writePump()

	stop := context.AfterFunc(ctx, sess.Close)
	defer stop()

	that.greet(ctx, sess)

	sess.readPump(func(data []byte) {
		that.dispatch(ctx, sess, data)
	})

	that.hub.Remove(sess.ID())
	sess.seat.close()

	that.release(ctx, sess)

	log.Info("connection closed", "connID", sess.ID())
}

// Wait - blocks until every connection has been released.
func (that *Server) Wait() {
	that.active.Wait()
}

// greet - the direct messages every new connection receives.
func (that *Server) greet(ctx context.Context, sess *Session) {
	that.reply(sess, protocol.NewInfo("Connected to Server "+that.replicaID+" on port "+that.port))

	state, err := that.manager.Snapshot(ctx)
	if err != nil {
		that.replyError(sess, err)
	} else {
		that.reply(sess, protocol.NewUpdate(state))
	}

	that.reply(sess, protocol.NewInfo(`Send {"type":"join"} then moves: {"type":"move","row":0,"col":2}`))
}

// release - frees the seat of a closed connection. Runs even when ctx is already canceled by shutdown.
func (that *Server) release(ctx context.Context, sess *Session) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), that.conf.WriteTimeout)
	defer cancel()

	if err := that.manager.Leave(releaseCtx, sess.ID()); err != nil {
		that.logger.Error("failed to release player", "connID", sess.ID(), "error", err)
	}
}

// reply - a direct message to one session.
func (that *Server) reply(sess *Session, msg any) {
	payload, err := protocol.Encode(msg)
	if err != nil {
		sess.logger.Error("failed to encode reply", "error", err)
		return
	}

	if !sess.Send(payload) && !sess.Closed() {
		metrics.SlowConsumers.Inc()
		sess.logger.Warn("send buffer full, closing")
		sess.Close()
	}
}

func (that *Server) replyError(sess *Session, err error) {
	that.reply(sess, protocol.NewError(apperror.ClientMessage(err)))
}
