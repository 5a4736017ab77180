// Command forge runs the knowledge ingestion and retrieval pipeline.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driving/cli"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	app, err := wire(context.Background(), os.Getenv("FORGE_HOME"))
	if err != nil {
		return err
	}
	defer app.Close()

	cli.SetVersion(version)
	cli.Configure(app.Services)
	if err := cli.Execute(); err != nil {
		logger.Debug("command failed: %v", err)
		return err
	}
	return nil
}
