package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in the config file. Environment
variables prefixed FORGE_ override file values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a config key",
	Long:  `Set a config key. Run "forge settings keys" to list the accepted keys.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List accepted config keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[General]")
	cmd.Printf("  Data dir: %s\n", settings.DataDir)
	cmd.Printf("  Listen: %s\n", settings.ListenAddr)
	cmd.Printf("  Cron secret: %s\n", secretStatus(settings.CronSecret))
	cmd.Printf("  Webhook: %s\n", valueOrNone(settings.WebhookURL))
	cmd.Printf("  Max requeue attempts: %d\n", settings.MaxRequeueAttempts)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", valueOrNone(settings.Embedding.Model))
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Printf("  Batch: %d every %s, %d chars max\n",
		settings.Embedding.BatchSize, settings.Embedding.BatchDelay, settings.Embedding.MaxInputChars)
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d, overlap: %d\n", settings.Chunking.Size, settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	if settings.Storage.Root != "" {
		cmd.Printf("  Root: %s\n", settings.Storage.Root)
	}
	if settings.Storage.Bucket != "" {
		cmd.Printf("  Bucket: %s\n", settings.Storage.Bucket)
	}
	cmd.Println()

	cmd.Println("[Crawl]")
	cmd.Printf("  Max pages: %d\n", settings.Crawl.MaxPages)
	cmd.Printf("  Tenant timeout: %s\n", settings.Crawl.TenantTimeout)
	cmd.Printf("  Concurrency: %d\n", settings.Crawl.Concurrency)
	cmd.Printf("  User agent: %s\n", settings.Crawl.UserAgent)
	cmd.Println()

	cmd.Println("[Scheduler]")
	cmd.Printf("  Enabled: %t\n", settings.Scheduler.Enabled)
	for _, id := range sortedTaskIDs(settings.Scheduler.TaskConfigs) {
		tc := settings.Scheduler.TaskConfigs[id]
		cmd.Printf("  %s: enabled=%t every %s\n", id, tc.Enabled, tc.Interval)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	if _, err := settingsService.Get(); err != nil {
		cmd.Printf("Warning: settings no longer valid: %v\n", err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, k := range settingsService.KnownKeys() {
		cmd.Println(k)
	}
	return nil
}

func sortedTaskIDs(tasks map[string]domain.TaskConfig) []string {
	ids := make([]string, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// maskAPIKey masks an API key for display, showing only first/last 4 chars.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func secretStatus(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return "(set)"
}

func valueOrNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}
