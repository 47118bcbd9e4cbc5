// Package main is the entry point for the mws-sync daemon.
package main

import (
	"os"

	"github.com/donaldgifford/mws-sync/cmd/mws-sync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
