// Package main provides the entry point for the awesome-pages CLI.
package main

import (
	"os"

	"github.com/goliatone/go-awesome-pages/cmd/awesome-pages/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
