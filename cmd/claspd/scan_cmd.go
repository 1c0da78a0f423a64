package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var scanFolder string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a folder and run the classification pipeline over it",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFolder, "folder", "", "folder path to scan (required)")
	scanCmd.MarkFlagRequired("folder")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	scanID := uuid.NewString()
	orchestrator := a.scanOrchestrator()
	ctx := context.Background()

	for event := range orchestrator.Run(ctx, scanID, scanFolder) {
		fmt.Printf("[stage %d] %s (%d/%d) %s\n", event.Stage, event.Message, event.Completed, event.Total, event.CurrentFile)
	}
	fmt.Printf("scan_id: %s\n", scanID)
	return nil
}
