// Command vigil runs the technical analysis and risk pipeline over local bar
// files.
package main

import (
	"context"
	"os"

	"github.com/aristath/vigil/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
