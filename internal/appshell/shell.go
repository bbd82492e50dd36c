package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Main runs entry with SIGINT/SIGTERM wired to context cancellation and exits
// with its code. SIGPIPE is ignored so that a closed stdout surfaces as an
// EPIPE write error the app can treat as a clean stop.
func Main(entry func(context.Context, []string, io.Writer, io.Writer) int) {
	signal.Ignore(syscall.SIGPIPE)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"--help"}
	}

	code := entry(ctx, args, os.Stdout, os.Stderr)
	if ctx.Err() != nil && code == 0 {
		code = 130
	}
	stop()
	os.Exit(code)
}
