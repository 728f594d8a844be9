package main

import (
	"os"

	"AssetSentinel/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
