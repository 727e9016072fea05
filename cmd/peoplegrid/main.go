// Command peoplegrid browses and filters people from the random-user API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rshade/peoplegrid/internal/cli"
	"github.com/rshade/peoplegrid/pkg/version"
)

func main() {
	os.Exit(run(context.Background()))
}

// run executes the root command and returns the process exit code.
func run(ctx context.Context) int {
	root := cli.NewRootCmd(version.Info())
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return cli.ExitCode(err)
}
