package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var filesScanID string

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the best-classification view for a scan",
	RunE:  runFiles,
}

func init() {
	filesCmd.Flags().StringVar(&filesScanID, "scan-id", "", "scan id to list (required)")
	filesCmd.MarkFlagRequired("scan-id")
}

func runFiles(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.store.BestClassifications(context.Background(), filesScanID)
	if err != nil {
		return err
	}
	for _, bc := range rows {
		fmt.Printf("%-8s %-20s %-10s %.2f  %s\n",
			humanize.Bytes(uint64(bc.File.Size)), bc.Classification.Category, bc.Classification.Tag,
			bc.Classification.ConfidenceScore, bc.File.Path)
	}
	return nil
}
