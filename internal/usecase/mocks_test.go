package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/entity"
)

type mockStore struct {
	mock.Mock
}

func newMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *mockStore {
	m := &mockStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *mockStore) ReadState(ctx context.Context) (*entity.GameState, error) {
	args := m.Called(ctx)
	return args.Get(0).(*entity.GameState), args.Error(1)
}

func (m *mockStore) AssignPlayer(ctx context.Context, identity string) (entity.Cell, *entity.GameState, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(entity.Cell), args.Get(1).(*entity.GameState), args.Error(2)
}

func (m *mockStore) ApplyMove(ctx context.Context, player entity.Cell, row, col float64) (*entity.GameState, error) {
	args := m.Called(ctx, player, row, col)
	return args.Get(0).(*entity.GameState), args.Error(1)
}

func (m *mockStore) ResetState(ctx context.Context) (*entity.GameState, error) {
	args := m.Called(ctx)
	return args.Get(0).(*entity.GameState), args.Error(1)
}

func (m *mockStore) ReleasePlayer(ctx context.Context, identity string) (*entity.GameState, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(*entity.GameState), args.Error(1)
}

// recordingPublisher keeps published messages in order.
type recordingPublisher struct {
	published []any
	err       error
}

func (that *recordingPublisher) Publish(_ context.Context, msg any) error {
	if that.err != nil {
		return that.err
	}

	that.published = append(that.published, msg)

	return nil
}
