package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/galaplate/fixture/bootstrap"
	"github.com/galaplate/fixture/console"
	"github.com/galaplate/fixture/logger"
)

func main() {
	app, err := bootstrap.Init()
	if err != nil {
		logger.Fatal("Failed to bootstrap", map[string]any{"error": err.Error()})
	}

	runErr := console.NewKernel(os.Stdout).Run(os.Args[1:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := app.Shutdown(ctx); err != nil {
		logger.Warn("Shutdown failed", map[string]any{"error": err.Error()})
	}
	cancel()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", runErr)
		os.Exit(1)
	}
}
