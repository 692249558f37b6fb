package main

import (
	"os"

	"github.com/teamwaffle/wafflebot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
