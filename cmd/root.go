package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-cluster/cmd/client"
	"github.com/rocketscienceinc/tictactoe-cluster/cmd/serve"
)

const Version = "0.1.0"

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tictactoe",
		Short: "replicated tic-tac-toe server",
		Long: fmt.Sprintf(`tictactoe (v%s)

One shared tic-tac-toe game served by any number of stateless replicas.
Replicas pointed at the same redis form one logical game.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("tictactoe v%s\n", Version)
		},
	}
)

func init() {
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(client.ClientCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command. Called by main.main().
func Execute() {
	if err := RootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
