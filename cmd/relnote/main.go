package main

import (
	"os"

	"github.com/ariel-frischer/relnote/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
