// Command archon is the entry point for the archon CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/archon-search/archon/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// A missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
