package main

import (
	"os"

	"github.com/thorgate/flint/cmd"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	os.Exit(cmd.Execute(version))
}
