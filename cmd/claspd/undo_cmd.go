package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var undoActionLogID string

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Reverse a previous apply batch",
	RunE:  runUndo,
}

func init() {
	undoCmd.Flags().StringVar(&undoActionLogID, "action-log-id", "", "action log id to undo (required)")
	undoCmd.MarkFlagRequired("action-log-id")
}

func runUndo(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.applier.Undo(context.Background(), undoActionLogID)
	if err != nil {
		return err
	}
	fmt.Printf("restored=%d failed=%d\n", result.Restored, result.Failed)
	for _, u := range result.Unrestorable {
		fmt.Printf("  unrestorable: %s (%s)\n", u.Filename, u.Reason)
	}
	return nil
}
