package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/splitplan/internal/cli"
	sperrors "github.com/matzehuels/splitplan/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := cli.New(os.Stderr, cli.LogInfo).RootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates bad input (2) from planning and runtime failures (1).
func exitCode(err error) int {
	switch sperrors.GetCode(err) {
	case sperrors.ErrCodeInvalidDemand, sperrors.ErrCodeInvalidFormat,
		sperrors.ErrCodeInvalidPath, sperrors.ErrCodeInvalidConfig:
		return 2
	}
	return 1
}
