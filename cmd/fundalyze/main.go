package main

import (
	"os"

	"github.com/wonny/fundalyze/cmd/fundalyze/commands"
)

// main is the entry point for the fundalyze CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
