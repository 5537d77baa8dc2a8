package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/entity"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/protocol"
)

const (
	resetByRequest    = "Game reset"
	resetOnDisconnect = "A player disconnected. Game reset."
	spectatorLabel    = "spectator"
)

type stateStore interface {
	ReadState(ctx context.Context) (*entity.GameState, error)
	AssignPlayer(ctx context.Context, identity string) (entity.Cell, *entity.GameState, error)
	ApplyMove(ctx context.Context, player entity.Cell, row, col float64) (*entity.GameState, error)
	ResetState(ctx context.Context) (*entity.GameState, error)
	ReleasePlayer(ctx context.Context, identity string) (*entity.GameState, error)
}

type publisher interface {
	Publish(ctx context.Context, msg any) error
}

// GameManager - runs one gateway request against the shared store and publishes its outcome to every replica.
type GameManager struct {
	logger    *slog.Logger
	store     stateStore
	publisher publisher
	replicaID string
}

func NewGameManager(logger *slog.Logger, store stateStore, publisher publisher, replicaID string) *GameManager {
	return &GameManager{
		logger:    logger.With("component", "game-manager", "replica", replicaID),
		store:     store,
		publisher: publisher,
		replicaID: replicaID,
	}
}

func (that *GameManager) Snapshot(ctx context.Context) (*entity.GameState, error) {
	state, err := that.store.ReadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	return state, nil
}

// Join - claims a seat for identity. An empty symbol means the game is full and the caller stays a spectator.
func (that *GameManager) Join(ctx context.Context, identity string) (entity.Cell, *entity.GameState, error) {
	symbol, state, err := that.store.AssignPlayer(ctx, identity)
	if err != nil {
		return entity.EmptyCell, nil, fmt.Errorf("failed to assign player: %w", err)
	}

	that.logger.Info("player joined", "connID", identity, "symbol", symbol)

	return symbol, state, nil
}

// AnnounceJoin - tells every replica who joined, then sends the fresh state.
func (that *GameManager) AnnounceJoin(ctx context.Context, symbol entity.Cell, state *entity.GameState) error {
	label := spectatorLabel
	if symbol.IsSymbol() {
		label = string(symbol)
	}

	return that.publish(ctx,
		protocol.NewInfo(fmt.Sprintf("Player %s joined via Server %s", label, that.replicaID)),
		protocol.NewUpdate(state),
	)
}

// Move - applies a move for player. Rule violations are returned as is, so they can be sent to the requester.
func (that *GameManager) Move(ctx context.Context, player entity.Cell, row, col float64) (*entity.GameState, error) {
	state, err := that.store.ApplyMove(ctx, player, row, col)
	if err != nil {
		return nil, err
	}

	msgs := []any{protocol.NewUpdate(state)}

	switch state.Status {
	case entity.StatusWin:
		msgs = append(msgs, protocol.NewWin(state.Winner))
		that.logger.Info("game won", "winner", state.Winner)
	case entity.StatusDraw:
		msgs = append(msgs, protocol.NewDraw())
		that.logger.Info("game drawn")
	case entity.StatusPlaying:
	}

	if err = that.publish(ctx, msgs...); err != nil {
		return nil, err
	}

	return state, nil
}

// Reset - clears the board for everyone; seats are kept.
func (that *GameManager) Reset(ctx context.Context) error {
	state, err := that.store.ResetState(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset state: %w", err)
	}

	that.logger.Info("game reset")

	return that.publish(ctx, protocol.NewReset(resetByRequest), protocol.NewUpdate(state))
}

// Leave - drops identity's seat and resets the game, whether or not it held one.
func (that *GameManager) Leave(ctx context.Context, identity string) error {
	state, err := that.store.ReleasePlayer(ctx, identity)
	if err != nil {
		return fmt.Errorf("failed to release player: %w", err)
	}

	that.logger.Info("player left", "connID", identity)

	return that.publish(ctx, protocol.NewReset(resetOnDisconnect), protocol.NewUpdate(state))
}

// publish - sends msgs one after another so subscribers see them in this order.
func (that *GameManager) publish(ctx context.Context, msgs ...any) error {
	for _, msg := range msgs {
		if err := that.publisher.Publish(ctx, msg); err != nil {
			return fmt.Errorf("failed to publish %T: %w", msg, err)
		}
	}

	return nil
}
