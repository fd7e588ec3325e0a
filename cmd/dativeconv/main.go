// Command dativeconv converts Dative form exports into normalized
// documents.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/dativeconv/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
