package main

import (
	"os"

	"github.com/dalemusser/marketplace-init/internal/cli"
)

func main() {
	os.Exit(cli.Run("marketplace-init", os.Args[1:], os.Stdout, os.Stderr))
}
