// Package main provides seriesctl, the seriesd admin command line.
package main

import (
	"fmt"
	"os"

	"github.com/listenupapp/seriesd/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
