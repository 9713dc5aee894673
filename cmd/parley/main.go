package main

import (
	"os"

	"github.com/parley-cli/parley/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
