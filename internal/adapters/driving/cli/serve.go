package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driving/httpapi"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// errDocumentsRequired is returned when serve runs without a document registry.
var errDocumentsRequired = errors.New("document registry not configured")

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background scheduler",
	Long: `Serve the JSON HTTP API and run the scheduled tasks (nightly crawl,
embedding backfill, event dispatch) until interrupted.

Examples:
  forge serve
  forge serve --addr :9090
  forge serve --no-scheduler`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: listen_addr setting)")
	serveCmd.Flags().Bool("no-scheduler", false, "do not run scheduled tasks")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if documentRegistry == nil {
		return errDocumentsRequired
	}

	addr, _ := cmd.Flags().GetString("addr")
	noScheduler, _ := cmd.Flags().GetBool("no-scheduler")

	var config httpapi.Config
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		config.CronSecret = settings.CronSecret
		if addr == "" {
			addr = settings.ListenAddr
		}
	}
	if addr == "" {
		addr = ":8080"
	}
	if config.CronSecret == "" {
		logger.Warn("serve: no cron secret configured, scheduled trigger endpoint will reject every call")
	}

	server, err := httpapi.NewServer(httpapi.Ports{
		Documents:  documentRegistry,
		Processor:  processor,
		Retrieval:  retrievalService,
		Crawl:      crawlService,
		Dedup:      deduplicator,
		Recovery:   recoveryService,
		Embeddings: embeddingService,
		Requeue:    requeueService,
	}, config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if p, ok := embeddingService.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			logger.Warn("serve: embedding provider not reachable, processing and search will fail until it is: %v", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on %s\n", addr)
		return server.Run(gctx, addr)
	})
	if scheduler != nil && !noScheduler {
		g.Go(func() error {
			if err := scheduler.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	err = g.Wait()
	if scheduler != nil && !noScheduler {
		if stopErr := scheduler.Stop(); stopErr != nil {
			logger.Warn("serve: stopping scheduler: %v", stopErr)
		}
	}
	return err
}
