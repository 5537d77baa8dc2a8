package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults apply when no file exists", func(t *testing.T) {
		// When: loading from a missing path
		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		// Then: the defaults match the single-game deployment
		require.NoError(t, err)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "A", conf.ReplicaID)
		assert.Equal(t, "3001", conf.Port)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, "tictactoe:state", conf.Keys.State)
		assert.Equal(t, "tictactoe:players", conf.Keys.Players)
		assert.Equal(t, "tictactoe:pubsub", conf.Keys.Channel)
		assert.Equal(t, 10*time.Second, conf.Session.WriteTimeout)
		assert.Equal(t, 64, conf.Session.SendBuffer)
	})

	t.Run("Environment overrides defaults", func(t *testing.T) {
		t.Setenv("REPLICA_ID", "B")
		t.Setenv("REDIS_HOST", "redis.internal")
		t.Setenv("KEYS_CHANNEL", "game:events")

		conf, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, "B", conf.ReplicaID)
		assert.Equal(t, "redis.internal:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, "game:events", conf.Keys.Channel)
	})

	t.Run("Reads a yaml file", func(t *testing.T) {
		// Given: a config file
		path := filepath.Join(t.TempDir(), "config.yml")
		content := "replica-id: C\nport: \"3003\"\nredis:\n  url: redis://store:6380/2\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// When: it is loaded
		conf, err := Load(path)

		// Then: file values are used
		require.NoError(t, err)
		assert.Equal(t, "C", conf.ReplicaID)
		assert.Equal(t, "3003", conf.Port)

		opts, err := conf.Redis.Options()
		require.NoError(t, err)
		assert.Equal(t, "store:6380", opts.Addr)
		assert.Equal(t, 2, opts.DB)
	})
}

func TestRedis_Options(t *testing.T) {
	t.Run("Host and port without url", func(t *testing.T) {
		r := Redis{Host: "localhost", Port: "6379", DB: 1}

		opts, err := r.Options()

		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", opts.Addr)
		assert.Equal(t, 1, opts.DB)
	})

	t.Run("Invalid url", func(t *testing.T) {
		r := Redis{URL: "http://nope"}

		_, err := r.Options()

		require.Error(t, err)
	})
}
