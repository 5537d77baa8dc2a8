package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/config"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/repository"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/transport/redis"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/transport/rest"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/usecase"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 30 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// RunApp - runs one replica until ctx is canceled or SIGINT/SIGTERM arrives.
func RunApp(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app", "replica", conf.ReplicaID)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisOptions, err := conf.Redis.Options()
	if err != nil {
		return err
	}

	redisStorage, err := storage.New(ctx, redisOptions)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	stateRepo := repository.NewStateRepository(logger, redisStorage, conf.Keys)

	created, err := stateRepo.InitIfMissing(ctx)
	if err != nil {
		return fmt.Errorf("could not initialize game state: %w", err)
	}

	log.Info("game state ready", "created", created)

	bus := redis.NewEventBus(logger, redisStorage, conf.Keys.Channel)

	subscription, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err = subscription.Close(); err != nil {
			log.Error("could not close subscription", "error", err)
		}
	}()

	hub := websocket.NewHub(logger)
	metrics.RegisterConnections(hub.Len)

	relayErrCh := make(chan error, 1)
	go func() {
		if relayErr := subscription.Relay(ctx, hub.Broadcast); relayErr != nil {
			relayErrCh <- relayErr
		}
	}()

	gameManager := usecase.NewGameManager(logger, stateRepo, bus, conf.ReplicaID)
	wsServer := websocket.New(logger, gameManager, hub, conf.ReplicaID, conf.Port, conf.Session)

	router := mux.NewRouter()
	rest.Register(router)
	wsServer.Register(ctx, router)

	srv := &http.Server{
		Addr:              ":" + conf.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", "port", conf.Port)
		if httpErr := srv.ListenAndServe(); httpErr != nil && !errors.Is(httpErr, http.ErrServerClosed) {
			httpErrCh <- httpErr
		}
	}()

	var runErr error

	select {
	case err = <-httpErrCh:
		runErr = fmt.Errorf("HTTP server error: %w", err)
	case err = <-relayErrCh:
		runErr = fmt.Errorf("event relay stopped: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	// closes every session through the context passed to Register
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.Error("could not shut down HTTP server", "error", err)
	}

	hub.CloseAll()
	wsServer.Wait()

	return runErr
}
