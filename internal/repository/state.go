package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/config"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/entity"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/tictactoe"
)

var symbols = []entity.Cell{entity.PlayerX, entity.PlayerO}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// StateRepository - owns every mutation of the shared game record and the player-slot index.
// Mutations run as WATCH/MULTI/EXEC transactions and are retried while a watched key changes underneath them.
type StateRepository struct {
	logger *slog.Logger
	client *redis.Client

	stateKey   string
	playersKey string
}

func NewStateRepository(logger *slog.Logger, client *redis.Client, keys config.Keys) *StateRepository {
	return &StateRepository{
		logger:     logger.With("component", "state-store"),
		client:     client,
		stateKey:   keys.State,
		playersKey: keys.Players,
	}
}

// InitIfMissing - writes a fresh record and clears the slot index unless a record already exists.
func (that *StateRepository) InitIfMissing(ctx context.Context) (bool, error) {
	var created bool

	err := that.transact(ctx, "init", func(tx *redis.Tx) (bool, error) {
		created = false

		exists, err := tx.Exists(ctx, that.stateKey).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check state: %w", err)
		}

		if exists > 0 {
			return false, nil
		}

		data, err := entity.EncodeState(entity.NewGameState())
		if err != nil {
			return false, err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, that.stateKey, data, 0)
			pipe.Del(ctx, that.playersKey)
			return nil
		})
		if err != nil {
			return false, err
		}

		created = true

		return true, nil
	}, that.stateKey)
	if err != nil {
		return false, fmt.Errorf("failed to init state: %w", err)
	}

	return created, nil
}

// ReadState - single fetch, no transaction.
func (that *StateRepository) ReadState(ctx context.Context) (*entity.GameState, error) {
	state, err := that.get(ctx, that.client)
	if err != nil {
		return nil, err
	}

	if state == nil {
		return nil, apperror.ErrStateMissing
	}

	return state, nil
}

// ApplyMove - places player's symbol at (row, col) if the current record allows it.
func (that *StateRepository) ApplyMove(ctx context.Context, player entity.Cell, row, col float64) (*entity.GameState, error) {
	var next *entity.GameState

	err := that.transact(ctx, "applyMove", func(tx *redis.Tx) (bool, error) {
		current, err := that.get(ctx, tx)
		if err != nil {
			return false, err
		}

		if current == nil {
			return false, apperror.ErrStateMissing
		}

		next, err = tictactoe.ApplyMove(current, player, row, col)
		if err != nil {
			return false, err
		}

		data, err := entity.EncodeState(next)
		if err != nil {
			return false, err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, that.stateKey, data, 0)
			return nil
		})

		return err == nil, err
	}, that.stateKey)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to apply move: %w", err)
	}

	return next, nil
}

// AssignPlayer - claims X, then O, for identity. A full game yields EmptyCell (spectator), not an error.
// An identity that is already seated gets its seat back instead of a second one.
func (that *StateRepository) AssignPlayer(ctx context.Context, identity string) (entity.Cell, *entity.GameState, error) {
	var (
		symbol entity.Cell
		state  *entity.GameState
	)

	err := that.transact(ctx, "assignPlayer", func(tx *redis.Tx) (bool, error) {
		values, err := tx.HMGet(ctx, that.playersKey, string(entity.PlayerX), string(entity.PlayerO)).Result()
		if err != nil {
			return false, fmt.Errorf("failed to read slots: %w", err)
		}

		seats := seatsFromValues(values)

		state, err = that.get(ctx, tx)
		if err != nil {
			return false, err
		}

		if state == nil {
			return false, apperror.ErrStateMissing
		}

		if symbol = seats.SeatOf(identity); symbol != entity.EmptyCell {
			return false, nil
		}

		symbol, _ = lo.Find(symbols, func(s entity.Cell) bool {
			return seats.Get(s) == ""
		})
		if symbol == entity.EmptyCell {
			return false, nil
		}

		next := state.Clone()
		next.Players.Set(symbol, identity)

		data, err := entity.EncodeState(next)
		if err != nil {
			return false, err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, that.playersKey, string(symbol), identity)
			pipe.Set(ctx, that.stateKey, data, 0)
			return nil
		})
		if err != nil {
			return false, err
		}

		state = next

		return true, nil
	}, that.playersKey, that.stateKey)
	if err != nil {
		if isDomainError(err) {
			return entity.EmptyCell, nil, err
		}

		return entity.EmptyCell, nil, fmt.Errorf("failed to assign player: %w", err)
	}

	return symbol, state, nil
}

// ReleasePlayer - drops identity's seats and commits a reset record, whether or not it held a seat.
// Seats of other identities are carried over.
func (that *StateRepository) ReleasePlayer(ctx context.Context, identity string) (*entity.GameState, error) {
	var reset *entity.GameState

	err := that.transact(ctx, "releasePlayer", func(tx *redis.Tx) (bool, error) {
		seats, err := tx.HGetAll(ctx, that.playersKey).Result()
		if err != nil {
			return false, fmt.Errorf("failed to read slots: %w", err)
		}

		held := lo.Filter(symbols, func(s entity.Cell, _ int) bool {
			return identity != "" && seats[string(s)] == identity
		})

		var kept entity.Players
		for _, s := range symbols {
			if id := seats[string(s)]; id != "" && id != identity {
				kept.Set(s, id)
			}
		}

		reset = tictactoe.Reset(kept)

		data, err := entity.EncodeState(reset)
		if err != nil {
			return false, err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(held) > 0 {
				pipe.HDel(ctx, that.playersKey, lo.Map(held, func(s entity.Cell, _ int) string {
					return string(s)
				})...)
			}
			pipe.Set(ctx, that.stateKey, data, 0)
			return nil
		})

		return err == nil, err
	}, that.playersKey, that.stateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to release player: %w", err)
	}

	return reset, nil
}

// ResetState - clears the board and keeps the current seats. Last writer wins; no transaction needed.
func (that *StateRepository) ResetState(ctx context.Context) (*entity.GameState, error) {
	var players entity.Players

	current, err := that.ReadState(ctx)
	switch {
	case errors.Is(err, apperror.ErrStateMissing):
	case err != nil:
		return nil, err
	default:
		players = current.Players
	}

	reset := tictactoe.Reset(players)

	data, err := entity.EncodeState(reset)
	if err != nil {
		return nil, err
	}

	if err = that.client.Set(ctx, that.stateKey, data, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to reset state: %w", err)
	}

	return reset, nil
}

// transact - runs fn under WATCH keys, retrying from the watch step for as long as the commit is rejected.
// Only a watch conflict is retried; any other error ends the loop. fn reports whether it queued a write,
// so lookups that end without one are not counted as commits.
func (that *StateRepository) transact(ctx context.Context, op string, fn func(tx *redis.Tx) (bool, error), keys ...string) error {
	for attempt := 1; ; attempt++ {
		var wrote bool

		err := that.client.Watch(ctx, func(tx *redis.Tx) error {
			var err error
			wrote, err = fn(tx)
			return err
		}, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			if err == nil && wrote {
				metrics.CASCommitted(op)
			}

			return err
		}

		metrics.CASConflict(op)
		that.logger.Debug("watched key changed, retrying", "op", op, "attempt", attempt)

		if err = ctx.Err(); err != nil {
			return fmt.Errorf("%s aborted: %w", op, err)
		}
	}
}

func (that *StateRepository) get(ctx context.Context, client getter) (*entity.GameState, error) {
	data, err := client.Get(ctx, that.stateKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	return entity.DecodeState(data)
}

func seatsFromValues(values []interface{}) entity.Players {
	var seats entity.Players

	for i, s := range symbols {
		if i >= len(values) {
			break
		}

		if id, ok := values[i].(string); ok {
			seats.Set(s, id)
		}
	}

	return seats
}

func isDomainError(err error) bool {
	return errors.Is(err, apperror.ErrStateMissing) || apperror.IsValidation(err)
}
