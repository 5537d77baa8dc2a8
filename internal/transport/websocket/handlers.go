package websocket

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/protocol"
)

// dispatch - decodes one inbound message and runs its handler. Runs on the session's read goroutine.
func (that *Server) dispatch(ctx context.Context, sess *Session, data []byte) {
	req := protocol.Decode(data)
	if req == nil {
		that.replyError(sess, apperror.ErrInvalidMessage)
		return
	}

	handler, ok := that.handlers[req.Type]
	if !ok {
		that.replyError(sess, fmt.Errorf("%w: %s", apperror.ErrUnknownType, req.Type))
		return
	}

	handler(ctx, sess, req)
}

func (that *Server) handleJoin(ctx context.Context, sess *Session, _ *protocol.Request) {
	symbol, state, err := that.manager.Join(ctx, sess.ID())
	if err != nil {
		sess.logger.Error("failed to join", "error", err)
		that.replyError(sess, err)
		return
	}

	if symbol.IsSymbol() {
		sess.seat.join(symbol)
		that.reply(sess, protocol.NewInfo(fmt.Sprintf("You are player %s", symbol)))
	} else {
		sess.seat.spectate()
		that.replyError(sess, apperror.ErrGameFull)
	}

	that.reply(sess, protocol.NewUpdate(state))

	if err = that.manager.AnnounceJoin(ctx, symbol, state); err != nil {
		sess.logger.Error("failed to announce join", "error", err)
		that.replyError(sess, err)
	}
}

func (that *Server) handleMove(ctx context.Context, sess *Session, req *protocol.Request) {
	symbol, joined := sess.seat.player()
	if !joined {
		that.replyError(sess, apperror.ErrNotPlayer)
		return
	}

	row, col := req.Cell()

	if _, err := that.manager.Move(ctx, symbol, row, col); err != nil {
		if !apperror.IsValidation(err) {
			sess.logger.Error("failed to apply move", "error", err)
		}

		that.replyError(sess, err)
	}
}

func (that *Server) handleReset(ctx context.Context, sess *Session, _ *protocol.Request) {
	if err := that.manager.Reset(ctx); err != nil {
		sess.logger.Error("failed to reset", "error", err)
		that.replyError(sess, err)
	}
}
