// Package main is the entry point for the hunkstage CLI binary.
package main

import (
	"os"

	"github.com/irahardianto/hunkstage/cmd/hunkstage/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
