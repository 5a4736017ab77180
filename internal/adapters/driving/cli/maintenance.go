package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Repair an organisation's corpus",
	Long: `Maintenance operations remove duplicate documents, purge corrupted
chunks and recompute embeddings. Every destructive action is audited.`,
}

var maintenanceDedupCmd = &cobra.Command{
	Use:   "dedup [doc-id]",
	Short: "Remove documents with duplicate titles",
	Long: `Remove documents whose normalised titles match, keeping the best copy
of each group. With a document id only that document's group is cleaned.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMaintenanceDedup,
}

var maintenanceCorruptionCmd = &cobra.Command{
	Use:   "corruption [doc-id]",
	Short: "Purge chunks holding binary or archive residue",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMaintenanceCorruption,
}

var maintenanceEmbeddingsCmd = &cobra.Command{
	Use:   "embeddings",
	Short: "Compute missing or outdated chunk embeddings",
	Args:  cobra.NoArgs,
	RunE:  runMaintenanceEmbeddings,
}

var embeddingsForceAll bool

func init() {
	maintenanceEmbeddingsCmd.Flags().BoolVar(&embeddingsForceAll, "force-all", false, "recompute every chunk, not only those missing a vector")

	maintenanceCmd.AddCommand(maintenanceDedupCmd)
	maintenanceCmd.AddCommand(maintenanceCorruptionCmd)
	maintenanceCmd.AddCommand(maintenanceEmbeddingsCmd)
	rootCmd.AddCommand(maintenanceCmd)
}

func runMaintenanceDedup(cmd *cobra.Command, args []string) error {
	if deduplicator == nil {
		return errors.New("deduplicator not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	var report *domain.CleanupReport
	if len(args) == 1 {
		report, err = deduplicator.CleanDocument(cmd.Context(), tenantID, args[0], actor())
	} else {
		report, err = deduplicator.CleanTenant(cmd.Context(), tenantID, actor())
	}
	if err != nil {
		return fmt.Errorf("deduplication failed: %w", err)
	}

	cmd.Printf("Duplicate sets: %d\n", report.DuplicateSets)
	cmd.Printf("Removed:        %d\n", report.TotalCleaned)
	for _, r := range report.Removals {
		cmd.Printf("  %q: kept %s (%d chunks), removed %s (%d chunks)\n",
			r.Title, r.KeptID, r.KeptChunks, r.RemovedID, r.RemovedChunks)
	}
	printFailures(cmd, report.Failures)
	return nil
}

func runMaintenanceCorruption(cmd *cobra.Command, args []string) error {
	if recoveryService == nil {
		return errors.New("corruption recovery not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	var report *domain.RecoveryReport
	if len(args) == 1 {
		report, err = recoveryService.ScanDocument(cmd.Context(), tenantID, args[0], actor())
	} else {
		report, err = recoveryService.ScanTenant(cmd.Context(), tenantID, actor())
	}
	if err != nil {
		return fmt.Errorf("corruption scan failed: %w", err)
	}

	cmd.Printf("Documents scanned: %d\n", report.DocumentsScanned)
	cmd.Printf("Chunks scanned:    %d\n", report.ChunksScanned)
	cmd.Printf("Chunks purged:     %d\n", report.ChunksPurged)
	cmd.Printf("Documents reset:   %d\n", report.DocumentsReset)
	for i := range report.Documents {
		d := &report.Documents[i]
		if d.Purged == 0 {
			continue
		}
		state := "kept"
		if d.ResetPending {
			state = "reset to pending"
		}
		cmd.Printf("  %s %q: purged %d of %d, %s\n", d.DocumentID, d.Title, d.Purged, d.ChunksScanned, state)
	}
	printFailures(cmd, report.Failures)
	return nil
}

func runMaintenanceEmbeddings(cmd *cobra.Command, _ []string) error {
	if embeddingService == nil {
		return errors.New("embedding service not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	mode := domain.EmbedMissingOnly
	if embeddingsForceAll {
		mode = domain.EmbedForceAll
	}
	report, err := embeddingService.Regenerate(cmd.Context(), tenantID, mode, actor())
	if err != nil {
		return fmt.Errorf("embedding regeneration failed: %w", err)
	}

	cmd.Printf("Mode:     %s\n", report.Mode)
	cmd.Printf("Chunks:   %d\n", report.Total)
	cmd.Printf("Embedded: %d\n", report.Embedded)
	cmd.Printf("Skipped:  %d\n", report.Skipped)
	cmd.Printf("Failed:   %d\n", report.Failed)
	cmd.Printf("Batches:  %d\n", report.Batches)
	printFailures(cmd, report.Failures)
	return nil
}

func printFailures(cmd *cobra.Command, failures []domain.ItemFailure) {
	if len(failures) == 0 {
		return
	}
	cmd.Println("Failures:")
	for _, f := range failures {
		cmd.Printf("  %s: %s\n", f.ID, f.Error)
	}
}
