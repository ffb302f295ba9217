// Command pipeline is the host CLI:
//
//	pipeline <queue_size> <stage_name>...
//
// It reads records from stdin, one per line, transforms them through the
// named stages in order, and writes the tail stage's output to stdout.
package main

import (
	"context"
	"os"

	"github.com/Rotemduvd/OS-ModularPipeline/internal/host"
)

func main() {
	code := host.Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr, nil)
	os.Exit(code)
}
