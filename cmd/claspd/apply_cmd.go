package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KimHands/clasp/pkg/store"
)

var (
	applyScanID             string
	applyFolderPath         string
	applyConflictResolution string
	applyPreviewOnly        bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Preview or execute moving classified files into their destinations",
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyScanID, "scan-id", "", "scan id to apply (required)")
	applyCmd.Flags().StringVar(&applyFolderPath, "folder", "", "base folder the destinations are resolved under; also recorded on the batch for history")
	applyCmd.Flags().StringVar(&applyConflictResolution, "conflict", "rename", "overwrite|rename|skip")
	applyCmd.Flags().BoolVar(&applyPreviewOnly, "preview", false, "only print the plan, don't move anything")
	applyCmd.MarkFlagRequired("scan-id")
}

func runApply(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if applyPreviewOnly {
		preview, err := a.applier.Preview(ctx, applyScanID)
		if err != nil {
			return err
		}
		fmt.Printf("total=%d excluded=%d folders_to_create=%d conflicts=%d\n",
			preview.TotalFiles, preview.ExcludedFiles, preview.FoldersToCreate, len(preview.Conflicts))
		for _, c := range preview.Conflicts {
			fmt.Printf("  conflict: %s -> %s\n", c.Filename, c.Destination)
		}
		return nil
	}

	result, err := a.applier.Apply(ctx, applyScanID, store.ConflictResolution(applyConflictResolution), applyFolderPath)
	if err != nil {
		return err
	}
	fmt.Printf("moved=%d skipped=%d failed=%d action_log_id=%s\n", result.Moved, result.Skipped, result.Failed, result.ActionLogID)
	return nil
}
