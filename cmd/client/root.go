package client

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/client"
)

var ClientCmd = &cobra.Command{
	Use:     "client <url>",
	Short:   "Play from the terminal",
	Example: "  tictactoe client ws://localhost:3001",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		conn, err := client.Dial(ctx, args[0])
		if err != nil {
			return err
		}
		defer conn.Close()

		return client.New(os.Stdout).Run(ctx, conn, os.Stdin)
	},
}
