package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/normalisers"
)

const timeLayout = "2006-01-02 15:04:05"

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage organisation documents",
	Long:  `Upload, inspect, process and requeue an organisation's documents.`,
}

var documentUploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a file and register it as pending",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentUpload,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the organisation's documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentProcessCmd = &cobra.Command{
	Use:   "process [doc-id]",
	Short: "Extract, chunk and embed a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentProcess,
}

var documentProcessPendingCmd = &cobra.Command{
	Use:   "process-pending",
	Short: "Process every pending document",
	Args:  cobra.NoArgs,
	RunE:  runDocumentProcessPending,
}

var documentRequeueCmd = &cobra.Command{
	Use:   "requeue [doc-id]",
	Short: "Reset a stuck document, repair its path and reprocess it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRequeue,
}

var (
	uploadTitle   string
	uploadMIME    string
	uploadProcess bool
	processForce  bool
	requeueForce  bool
)

func init() {
	documentUploadCmd.Flags().StringVar(&uploadTitle, "title", "", "document title (default: file name)")
	documentUploadCmd.Flags().StringVar(&uploadMIME, "mime", "", "MIME type (default: detected)")
	documentUploadCmd.Flags().BoolVar(&uploadProcess, "process", false, "process the document after upload")
	documentProcessCmd.Flags().BoolVar(&processForce, "force", false, "reprocess even if already processing")
	documentRequeueCmd.Flags().BoolVar(&requeueForce, "force", false, "bypass the requeue attempt limit")

	documentCmd.AddCommand(documentUploadCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentProcessCmd)
	documentCmd.AddCommand(documentProcessPendingCmd)
	documentCmd.AddCommand(documentRequeueCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentUpload(cmd *cobra.Command, args []string) error {
	if documentRegistry == nil {
		return errors.New("document registry not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	fileName := filepath.Base(path)
	mimeType := uploadMIME
	if mimeType == "" {
		mimeType = normalisers.DetectMIMEType(fileName, content)
	}

	doc, err := documentRegistry.Register(cmd.Context(), driving.RegisterRequest{
		TenantID: tenantID,
		Title:    uploadTitle,
		FileName: fileName,
		MimeType: mimeType,
		Content:  content,
	})
	if err != nil {
		return fmt.Errorf("failed to register document: %w", err)
	}

	cmd.Printf("Registered %s (%s)\n", doc.ID, doc.StoragePath)
	if !uploadProcess {
		return nil
	}
	if processor == nil {
		return errors.New("processing service not configured")
	}
	result, err := processor.Process(cmd.Context(), tenantID, doc.ID, false)
	if err != nil {
		return fmt.Errorf("failed to process document: %w", err)
	}
	printProcessResult(cmd, result)
	return nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentRegistry == nil {
		return errors.New("document registry not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	docs, err := documentRegistry.List(cmd.Context(), tenantID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Printf("No documents found for %s\n", tenantID)
		return nil
	}

	cmd.Printf("Documents for %s:\n\n", tenantID)
	for i := range docs {
		cmd.Printf("  %s  %-10s  %4d chunks  %s\n", docs[i].ID, docs[i].Status, docs[i].TotalChunks, docs[i].Title)
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentRegistry == nil {
		return errors.New("document registry not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	doc, err := documentRegistry.Get(cmd.Context(), tenantID, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:     %s\n", doc.Title)
	cmd.Printf("  File:      %s\n", doc.FileName)
	cmd.Printf("  Path:      %s\n", doc.StoragePath)
	cmd.Printf("  Type:      %s\n", doc.MimeType)
	cmd.Printf("  Status:    %s\n", doc.Status)
	cmd.Printf("  Chunks:    %d\n", doc.TotalChunks)
	cmd.Printf("  Requeues:  %d\n", doc.RequeueAttempts)
	cmd.Printf("  Created:   %s\n", doc.CreatedAt.Format(timeLayout))
	cmd.Printf("  Updated:   %s\n", doc.UpdatedAt.Format(timeLayout))
	if !doc.ProcessedAt.IsZero() {
		cmd.Printf("  Processed: %s\n", doc.ProcessedAt.Format(timeLayout))
	}

	if len(doc.Metadata) > 0 {
		keys := make([]string, 0, len(doc.Metadata))
		for k := range doc.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cmd.Println("\n  Metadata:")
		for _, k := range keys {
			cmd.Printf("    %s: %v\n", k, doc.Metadata[k])
		}
	}
	return nil
}

func runDocumentProcess(cmd *cobra.Command, args []string) error {
	if processor == nil {
		return errors.New("processing service not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	result, err := processor.Process(cmd.Context(), tenantID, args[0], processForce)
	if err != nil {
		return fmt.Errorf("failed to process document: %w", err)
	}
	printProcessResult(cmd, result)
	return nil
}

func runDocumentProcessPending(cmd *cobra.Command, _ []string) error {
	if processor == nil {
		return errors.New("processing service not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	results, err := processor.ProcessPending(cmd.Context(), tenantID)
	if err != nil {
		return fmt.Errorf("failed to process pending documents: %w", err)
	}
	if len(results) == 0 {
		cmd.Println("No pending documents.")
		return nil
	}
	for i := range results {
		printProcessResult(cmd, &results[i])
	}
	return nil
}

func runDocumentRequeue(cmd *cobra.Command, args []string) error {
	if requeueService == nil {
		return errors.New("requeue service not configured")
	}
	tenantID, err := requireTenant()
	if err != nil {
		return err
	}

	result, err := requeueService.Requeue(cmd.Context(), driving.RequeueRequest{
		TenantID:   tenantID,
		DocumentID: args[0],
		Force:      requeueForce,
		Actor:      actor(),
	})
	if err != nil {
		return fmt.Errorf("failed to requeue document: %w", err)
	}

	cmd.Printf("Requeued %s (request %s)\n", result.DocumentID, result.RequestID)
	cmd.Printf("  Chunks deleted: %d\n", result.ChunksDeleted)
	cmd.Printf("  Path repair:    %s\n", result.PathRepair)
	if result.StoragePath != "" {
		cmd.Printf("  Storage path:   %s\n", result.StoragePath)
	}
	if result.Process != nil {
		printProcessResult(cmd, result.Process)
	}
	if !result.OK() {
		steps := make([]string, 0, len(result.StepErrors))
		for step := range result.StepErrors {
			steps = append(steps, step)
		}
		sort.Strings(steps)
		cmd.Println("  Step errors:")
		for _, step := range steps {
			cmd.Printf("    %s: %s\n", step, result.StepErrors[step])
		}
	}
	return nil
}

func printProcessResult(cmd *cobra.Command, r *domain.ProcessResult) {
	if r.Skipped {
		cmd.Printf("  %s: skipped (already processing)\n", r.DocumentID)
		return
	}
	cmd.Printf("  %s: %s, %d chunks, %d embedded", r.DocumentID, r.Status, r.Chunks, r.Embedded)
	if r.Dropped > 0 {
		cmd.Printf(", %d corrupted dropped", r.Dropped)
	}
	cmd.Println()
	if r.Error != "" {
		cmd.Printf("    error: %s\n", r.Error)
	}
}
