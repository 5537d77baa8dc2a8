package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	LogLevel  string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFile   string  `yaml:"log-file" env:"LOG_FILE"`
	ReplicaID string  `yaml:"replica-id" env:"REPLICA_ID" env-default:"A"`
	Port      string  `yaml:"port" env:"SOCKET_PORT" env-default:"3001"`
	Redis     Redis   `yaml:"redis" env-prefix:"REDIS_"`
	Keys      Keys    `yaml:"keys" env-prefix:"KEYS_"`
	Session   Session `yaml:"session" env-prefix:"SESSION_"`
}

type Redis struct {
	URL      string `yaml:"url" env:"URL"`
	Host     string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"PORT" env-default:"6379"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB" env-default:"0"`
}

// Keys - names of the shared records; replicas with the same keys and store form one game.
type Keys struct {
	State   string `yaml:"state" env:"STATE" env-default:"tictactoe:state"`
	Players string `yaml:"players" env:"PLAYERS" env-default:"tictactoe:players"`
	Channel string `yaml:"channel" env:"CHANNEL" env-default:"tictactoe:pubsub"`
}

type Session struct {
	WriteTimeout time.Duration `yaml:"write-timeout" env:"WRITE_TIMEOUT" env-default:"10s"`
	PingInterval time.Duration `yaml:"ping-interval" env:"PING_INTERVAL" env-default:"15s"`
	ReadDeadline time.Duration `yaml:"read-deadline" env:"READ_DEADLINE" env-default:"60s"`
	SendBuffer   int           `yaml:"send-buffer" env:"SEND_BUFFER" env-default:"64"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads path when it exists, otherwise falls back to environment variables and defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err = cleanenv.ReadConfig(path, config); err != nil {
				return nil, fmt.Errorf("unable to load config file: %w", err)
			}

			return config, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("unable to stat config file: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to read config from env: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// Options - client options; URL wins over host/port when set.
func (that *Redis) Options() (*redis.Options, error) {
	if that.URL != "" {
		opts, err := redis.ParseURL(that.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}

		return opts, nil
	}

	return &redis.Options{
		Addr:     that.GetRedisAddr(),
		Password: that.Password,
		DB:       that.DB,
	}, nil
}
