package main

import (
	"os"

	"github.com/opaline-dev/troupe/internal/cli"
)

func main() {
	if err := cli.NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
