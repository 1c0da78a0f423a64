package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var historyFolderPath string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List apply batches for a folder, newest first",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFolderPath, "folder", "", "folder path (required)")
	historyCmd.MarkFlagRequired("folder")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	batches, err := a.applier.History(context.Background(), historyFolderPath)
	if err != nil {
		return err
	}
	for _, b := range batches {
		fmt.Printf("%s  moved=%d skipped=%d failed=%d undone=%v  %s\n",
			b.ActionLogID, b.Moved, b.Skipped, b.Failed, b.IsUndone, b.ExecutedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
