package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/selahproject/selah/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	stateDir := flag.String("state", "", "override state directory (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, StateDir: *stateDir}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "selah: %v\n", err)
		return 1
	}
	return 0
}
