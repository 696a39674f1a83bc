package main

import (
	"os"

	"github.com/akulov/spacefs/cmd/spacefs/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
