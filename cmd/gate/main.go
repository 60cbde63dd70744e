// Command gate keeps the history of a directory tree and lets you step
// through it.
package main

import (
	"context"
	"os"

	"github.com/roach88/gate/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
