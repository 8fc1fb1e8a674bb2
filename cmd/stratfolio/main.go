package main

import (
	"os"

	"github.com/rustyeddy/stratfolio/cmd/stratfolio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
