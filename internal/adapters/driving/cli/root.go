// Package cli is the command-line driving adapter.
package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	tenantFlag  string
	actorFlag   string
	verboseFlag bool
)

// Services wired by Configure.
var (
	documentRegistry driving.DocumentRegistry
	processor        driving.ProcessingService
	retrievalService driving.RetrievalService
	crawlService     driving.CrawlService
	deduplicator     driving.Deduplicator
	recoveryService  driving.CorruptionRecovery
	embeddingService driving.EmbeddingRegenerator
	requeueService   driving.RequeueOrchestrator
	eventDispatcher  driving.EventDispatcher
	scheduler        driving.Scheduler
	settingsService  driving.SettingsService
)

// errTenantRequired is returned by tenant-scoped commands run without --tenant.
var errTenantRequired = errors.New("--tenant is required")

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "Organisational knowledge ingestion and retrieval",
	Long: `forge ingests an organisation's documents and allow-listed web pages,
turns them into embedded chunks and serves tenant-scoped similarity search.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&tenantFlag, "tenant", "t", "", "organisation id to operate on")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "actor", "", "actor recorded in audit entries (default: system)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Services bundles the core services the commands drive.
type Services struct {
	Documents  driving.DocumentRegistry
	Processor  driving.ProcessingService
	Retrieval  driving.RetrievalService
	Crawl      driving.CrawlService
	Dedup      driving.Deduplicator
	Recovery   driving.CorruptionRecovery
	Embeddings driving.EmbeddingRegenerator
	Requeue    driving.RequeueOrchestrator
	Dispatcher driving.EventDispatcher
	Scheduler  driving.Scheduler
	Settings   driving.SettingsService
}

// Configure installs the services used by every command.
func Configure(s Services) {
	documentRegistry = s.Documents
	processor = s.Processor
	retrievalService = s.Retrieval
	crawlService = s.Crawl
	deduplicator = s.Dedup
	recoveryService = s.Recovery
	embeddingService = s.Embeddings
	requeueService = s.Requeue
	eventDispatcher = s.Dispatcher
	scheduler = s.Scheduler
	settingsService = s.Settings
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// requireTenant returns the --tenant value or errTenantRequired.
func requireTenant() (string, error) {
	t := strings.TrimSpace(tenantFlag)
	if t == "" {
		return "", errTenantRequired
	}
	return t, nil
}

// actor returns the --actor value, defaulting to the system actor.
func actor() string {
	if a := strings.TrimSpace(actorFlag); a != "" {
		return a
	}
	return domain.ActorSystem
}
