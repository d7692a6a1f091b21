// Spins up the chains server, serving named lists over the Redis protocol.

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/nobletooth/chains/pkg/config"
	"github.com/nobletooth/chains/pkg/port"
	"github.com/nobletooth/chains/pkg/utils"
)

var printVersion = flag.Bool("print_version", false, "Print the version and exit.")

func main() {
	config.InitFlags()
	utils.InitLogging()

	if *printVersion {
		slog.Info("Chains build info.", "version", utils.Version, "commit", utils.Commit, "build", utils.BuildTime)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() { // Listen for OS interrupts in the background.
		sig := <-signals
		slog.Info("Received termination signal, cancelling server context.", "signal", sig)
		cancel()
	}()

	if err := port.RunRedisServer(ctx, port.NewListStore()); err != nil {
		slog.Error("Chains server stopped.", "err", err)
		os.Exit(1)
	}
}
