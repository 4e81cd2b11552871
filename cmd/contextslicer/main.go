// Package main is the entry point for the contextslicer CLI tool.
package main

import (
	"os"

	"github.com/contextslicer/contextslicer/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
