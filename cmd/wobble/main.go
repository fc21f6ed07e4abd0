package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/wobble/internal/cli"
	werrors "github.com/matzehuels/wobble/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := cli.New(os.Stderr, cli.LogInfo).RootCommand()
	root.SilenceErrors = true

	err := root.ExecuteContext(ctx)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, cli.StyleError.Render("Error: "+err.Error()))
	}
	os.Exit(exitCode(err))
}

// exitCode maps an error to a process exit status: 2 for bad input,
// 130 for an interrupt, 1 for everything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	case werrors.IsInvalid(err):
		return 2
	}
	return 1
}
