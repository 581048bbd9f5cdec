package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/pkgweave/cmd/pkgweave"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := pkgweave.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		pkgweave.RenderError(rootCmd, err)
		stop()
		os.Exit(1)
	}
}
