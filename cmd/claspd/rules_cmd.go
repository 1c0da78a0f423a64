package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KimHands/clasp/pkg/store"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List, create, and delete destination rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every rule, ordered by priority",
	RunE:  runRulesList,
}

var (
	ruleType       string
	ruleValue      string
	ruleFolderName string
	rulePriority   int
	ruleParentID   int64
)

var rulesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new rule",
	RunE:  runRulesAdd,
}

var ruleDeleteID int64

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a rule, re-parenting its children",
	RunE:  runRulesDelete,
}

func init() {
	rulesAddCmd.Flags().StringVar(&ruleType, "type", "", "extension|date|content (required)")
	rulesAddCmd.Flags().StringVar(&ruleValue, "value", "", "value to match (required)")
	rulesAddCmd.Flags().StringVar(&ruleFolderName, "folder", "", "destination folder name (required)")
	rulesAddCmd.Flags().IntVar(&rulePriority, "priority", 0, "match priority, ascending")
	rulesAddCmd.Flags().Int64Var(&ruleParentID, "parent-id", 0, "parent rule id, 0 for root")
	rulesAddCmd.MarkFlagRequired("type")
	rulesAddCmd.MarkFlagRequired("value")
	rulesAddCmd.MarkFlagRequired("folder")

	rulesDeleteCmd.Flags().Int64Var(&ruleDeleteID, "id", 0, "rule id to delete (required)")
	rulesDeleteCmd.MarkFlagRequired("id")

	rulesCmd.AddCommand(rulesListCmd, rulesAddCmd, rulesDeleteCmd)
}

func runRulesList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.store.ListRules(context.Background())
	if err != nil {
		return err
	}
	for _, r := range list {
		fmt.Printf("%d  priority=%d  %s=%s  -> %s  (parent=%d)\n", r.ID, r.Priority, r.Type, r.Value, r.FolderName, r.ParentID)
	}
	return nil
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	created, err := a.store.CreateRule(context.Background(), store.Rule{
		Priority:   rulePriority,
		Type:       store.RuleType(ruleType),
		Value:      ruleValue,
		FolderName: ruleFolderName,
		ParentID:   ruleParentID,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created rule %d\n", created.ID)
	return nil
}

func runRulesDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	return a.store.DeleteRule(context.Background(), ruleDeleteID)
}
