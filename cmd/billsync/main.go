package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"BillSync/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand(nil).ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "billsync:", err)
	}
	stop()
	os.Exit(cli.ExitCode(err))
}
