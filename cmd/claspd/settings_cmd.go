package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and edit custom extension/category mappings",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom extensions and categories",
	RunE:  runSettingsList,
}

var (
	settingsExtension string
	settingsCategory  string
	settingsKeywords  []string
)

var settingsAddExtensionCmd = &cobra.Command{
	Use:   "add-extension",
	Short: "Register a custom extension -> category mapping",
	RunE:  runSettingsAddExtension,
}

var settingsAddCategoryCmd = &cobra.Command{
	Use:   "add-category",
	Short: "Register a custom category with embedding-prototype keywords",
	RunE:  runSettingsAddCategory,
}

func init() {
	settingsAddExtensionCmd.Flags().StringVar(&settingsExtension, "extension", "", "extension without the leading dot (required)")
	settingsAddExtensionCmd.Flags().StringVar(&settingsCategory, "category", "", "category to map the extension to (required)")
	settingsAddExtensionCmd.MarkFlagRequired("extension")
	settingsAddExtensionCmd.MarkFlagRequired("category")

	settingsAddCategoryCmd.Flags().StringVar(&settingsCategory, "name", "", "category name (required)")
	settingsAddCategoryCmd.Flags().StringSliceVar(&settingsKeywords, "keyword", nil, "keyword seeding the embedding prototype (repeatable)")
	settingsAddCategoryCmd.MarkFlagRequired("name")

	settingsCmd.AddCommand(settingsListCmd, settingsAddExtensionCmd, settingsAddCategoryCmd)
}

func runSettingsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	extensions, err := a.store.ListCustomExtensions(ctx)
	if err != nil {
		return err
	}
	for _, e := range extensions {
		fmt.Printf("extension  .%s -> %s\n", e.Extension, e.Category)
	}

	categories, err := a.store.ListCustomCategories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Printf("category   %s  keywords=%v\n", c.Name, c.Keywords)
	}
	return nil
}

func runSettingsAddExtension(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	created, err := a.store.CreateCustomExtension(context.Background(), settingsExtension, settingsCategory)
	if err != nil {
		return err
	}
	fmt.Printf("created extension mapping %d\n", created.ID)
	return nil
}

func runSettingsAddCategory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	created, err := a.store.CreateCustomCategory(context.Background(), settingsCategory, settingsKeywords)
	if err != nil {
		return err
	}
	fmt.Printf("created category %d\n", created.ID)
	return nil
}
