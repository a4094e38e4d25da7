package main

import (
	"os"

	"github.com/fimo-dev/fimo/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
