// Package suite runs redis-backed tests against a disposable container.
package suite

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/config"
)

const (
	image        = "redis"
	imageTag     = "7-alpine"
	exposed      = "6379/tcp"
	containerTTL = 3 * time.Minute
	readyWithin  = time.Minute
)

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage *redis.Client
	Addr    string
	Keys    config.Keys
}

// New - a fresh, empty redis for one test. Skips when no docker daemon answers.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), containerTTL)
	t.Cleanup(cancel)

	pool := dockerPool(t)
	addr := startRedis(t, pool)

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		_ = client.Close()
	})

	pool.MaxWait = readyWithin
	if err := pool.Retry(func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		t.Fatalf("redis at %s never became ready: %v", addr, err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush %s: %v", addr, err)
	}

	return ctx, &Suite{
		T:       t,
		Logger:  slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
		Storage: client,
		Addr:    addr,
		Keys: config.Keys{
			State:   "tictactoe:state",
			Players: "tictactoe:players",
			Channel: "tictactoe:pubsub",
		},
	}
}

// NewClient - an extra connection to the same container, standing in for another replica.
func (that *Suite) NewClient() *redis.Client {
	that.Helper()

	client := redis.NewClient(&redis.Options{Addr: that.Addr})
	that.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func dockerPool(t *testing.T) *dockertest.Pool {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	return pool
}

// startRedis - runs the container and registers its removal; returns host:port of the mapped redis port.
func startRedis(t *testing.T, pool *dockertest.Pool) string {
	t.Helper()

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: image,
		Tag:        imageTag,
	}, func(host *docker.HostConfig) {
		host.AutoRemove = true
		host.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("start %s:%s: %v", image, imageTag, err)
	}

	// the daemon kills it even if cleanup never runs
	_ = resource.Expire(uint(containerTTL.Seconds()))

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("purge %s: %v", resource.Container.ID, err)
		}
	})

	return resource.GetHostPort(exposed)
}
