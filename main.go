package main

import "github.com/rocketscienceinc/tictactoe-cluster/cmd"

func main() {
	cmd.Execute()
}
