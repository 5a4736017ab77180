package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Scheduled task commands",
}

var taskRunCmd = &cobra.Command{
	Use:   "run [task-id]",
	Short: "Run a scheduled task now",
	Long: `Run a scheduled task immediately, outside its schedule.

Tasks:
  nightly-crawl       crawl every tenant with due domains
  embedding-backfill  embed chunks missing a vector for every tenant
  event-dispatch      deliver pending outbox events`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskRun,
}

func init() {
	taskCmd.AddCommand(taskRunCmd)
	rootCmd.AddCommand(taskCmd)
}

func runTaskRun(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	result, err := scheduler.RunNow(cmd.Context(), args[0])
	if err != nil && result == nil {
		return fmt.Errorf("failed to run task: %w", err)
	}
	if result == nil {
		return errors.New("task returned no result")
	}

	status := "succeeded"
	if !result.Success {
		status = "failed"
	}
	cmd.Printf("Task %s %s in %s (%d items)\n",
		result.TaskID, status, result.EndedAt.Sub(result.StartedAt).Round(time.Millisecond), result.ItemsProcessed)
	if err != nil {
		return fmt.Errorf("task %s failed: %s", result.TaskID, result.Error)
	}
	return nil
}
