// Command memorygym is the local flashcard client. Run with --help for the
// list of commands.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/heartmarshall/memorygym-backend/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()

	if err != nil {
		os.Exit(1)
	}
}
