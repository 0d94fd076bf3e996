package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/danhigham/autotele/internal/cli"
	"github.com/danhigham/autotele/internal/plan"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := cli.NewCommand(plan.MassBookingName).ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
