// carbonwatch watches a directory of source files and renders each new or
// modified file to a syntax-highlighted PNG via the carbon-now CLI.
package main

import (
	"os"

	"github.com/hupe1980/carbonwatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
