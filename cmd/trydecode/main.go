package main

import (
	"os"

	"github.com/birdayz/trydecode/pkg/cmd"
)

// Overridden at release time with -ldflags "-X main.version=... -X main.commit=...".
var (
	commit  = "none"
	version = "dev"
)

func main() {
	if err := cmd.Execute(version, commit); err != nil {
		os.Exit(1)
	}
}
