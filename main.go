package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ardnew/moustache/cli"
	"github.com/ardnew/moustache/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error(
			"run failed",
			slog.Any("error", err),
		) // slog automatically uses LogValue()
		stop()
		os.Exit(1)
	}
}
