package main

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	classifyFileID   int64
	classifyCategory string
	classifyTag      string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Set a manual classification override for one file",
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().Int64Var(&classifyFileID, "file-id", 0, "file id (required)")
	classifyCmd.Flags().StringVar(&classifyCategory, "category", "", "category to assign (required)")
	classifyCmd.Flags().StringVar(&classifyTag, "tag", "", "tag to assign")
	classifyCmd.MarkFlagRequired("file-id")
	classifyCmd.MarkFlagRequired("category")
}

func runClassify(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.SetManualClassification(context.Background(), classifyFileID, classifyCategory, classifyTag, time.Now().UTC()); err != nil {
		return err
	}
	cmd.Println("classified file " + strconv.FormatInt(classifyFileID, 10) + " as " + classifyCategory)
	return nil
}
