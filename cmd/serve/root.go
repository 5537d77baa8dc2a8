package serve

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	app "github.com/rocketscienceinc/tictactoe-cluster/internal"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/config"
)

const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 7
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start one replica",
	Long: `Start one replica. Configuration is read from the config file when it exists, otherwise from
environment variables (LOG_LEVEL, REPLICA_ID, SOCKET_PORT, REDIS_URL, ...). Flags override both.`,
	RunE: run,
}

func init() {
	cobra.OnInitialize(initEnv)

	ServeCmd.Flags().String("config", "config.yml", "path to the config file")
	ServeCmd.Flags().String("id", "", "replica identity shown to clients")
	ServeCmd.Flags().String("port", "", "listen port")
	ServeCmd.Flags().String("redis", "", "redis url, e.g. redis://localhost:6379")
	ServeCmd.Flags().String("log-level", "", "debug, info, warn or error")
	ServeCmd.Flags().String("log-file", "", "also write logs to this file, rotated by size")
}

// initEnv - loads .env files before the config is read.
func initEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

func run(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")

	conf, err := config.Load(path)
	if err != nil {
		return err
	}

	applyFlags(cmd, conf)

	logger, closer := initLogger(conf)
	defer closer.Close()

	if err = app.RunApp(cmd.Context(), logger, conf); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}

	return nil
}

// applyFlags - explicitly set flags win over file and environment values.
func applyFlags(cmd *cobra.Command, conf *config.Config) {
	overrides := map[string]*string{
		"id":        &conf.ReplicaID,
		"port":      &conf.Port,
		"redis":     &conf.Redis.URL,
		"log-level": &conf.LogLevel,
		"log-file":  &conf.LogFile,
	}

	for name, target := range overrides {
		if !cmd.Flags().Changed(name) {
			continue
		}

		if value, err := cmd.Flags().GetString(name); err == nil {
			*target = value
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// initLogger - JSON logs to stdout, and to a rotated file when log-file is set.
func initLogger(conf *config.Config) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if conf.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   conf.LogFile,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
			Compress:   true,
		}

		out = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(conf.LogLevel)})), closer
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
