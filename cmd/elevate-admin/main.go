// Command elevate-admin is the operational CLI for the Elevate platform.
package main

import (
	"os"

	"github.com/elevate-edu/elevate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
