package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/agora-platform/agora/internal/cli"
)

func main() {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
