package main

import (
	"os"

	"github.com/hookrelay-systems/hookrelay/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
