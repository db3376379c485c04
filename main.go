package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/srivarshini-21/india-vaccination-dashboard/cli"
)

func main() {
	// LOG_LEVEL and LOG_FORMAT may come from a local .env file.
	_ = godotenv.Load()

	if err := cli.App.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error running CLI app:", err)
		os.Exit(1)
	}
}
