package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Outbox event commands",
}

var eventsDispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Deliver pending outbox events to the webhook",
	Args:  cobra.NoArgs,
	RunE:  runEventsDispatch,
}

var dispatchLimit int

func init() {
	eventsDispatchCmd.Flags().IntVar(&dispatchLimit, "limit", 100, "maximum events to deliver")
	eventsCmd.AddCommand(eventsDispatchCmd)
	rootCmd.AddCommand(eventsCmd)
}

func runEventsDispatch(cmd *cobra.Command, _ []string) error {
	if eventDispatcher == nil {
		return errors.New("event dispatcher not configured")
	}

	delivered, err := eventDispatcher.Dispatch(cmd.Context(), dispatchLimit)
	if err != nil {
		return fmt.Errorf("dispatch failed: %w", err)
	}
	cmd.Printf("Delivered %d events\n", delivered)
	return nil
}
