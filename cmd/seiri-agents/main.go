// Package main is the entry point for the seiri-agents CLI.
package main

import (
	"os"

	"github.com/topher/seiri-portal-sub002/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
