// Package main is claspd, the local CLI front door (C13): a development
// and smoke-test harness covering part of the HTTP surface of §6 as local
// operations against the store (not every route has a subcommand). It owns no behavior of its own —
// every decision (conflict resolution, scoring, path sanitization) stays
// in the C1-C10 packages it calls into.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/KimHands/clasp/pkg/apply"
	"github.com/KimHands/clasp/pkg/classify"
	"github.com/KimHands/clasp/pkg/config"
	"github.com/KimHands/clasp/pkg/embed"
	"github.com/KimHands/clasp/pkg/llm"
	"github.com/KimHands/clasp/pkg/rules"
	"github.com/KimHands/clasp/pkg/scan"
	"github.com/KimHands/clasp/pkg/store"
)

var rootCmd = &cobra.Command{
	Use:   "claspd",
	Short: "Document-organizing engine: scan, classify, and apply a folder layout",
	Long:  "claspd scans a folder, classifies its files into categories via a three-tier ensemble, and moves them into a rule-driven destination layout with a reversible audit trail.",
}

// app bundles every constructed component a subcommand might need. Built
// lazily per invocation rather than at package init so a missing/invalid
// config doesn't break --help.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	store    *store.Store
	pipeline *classify.Pipeline
	embedder *embed.Provider
	applier  *apply.Engine
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Str("component", "claspd").Logger()

	s, err := store.Open(cfg.DataDir+"/clasp.db", log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	rulesEngine, err := rules.Load(context.Background(), s)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("load rules: %w", err)
	}

	embedder := embed.New(cfg, log)
	if err := embedder.Warm(context.Background()); err != nil {
		log.Warn().Err(err).Msg("embedding provider warm-up failed, continuing degraded")
	}
	llmClient := llm.New(cfg, log)
	pipeline := classify.New(rulesEngine, embedder, llmClient)

	if customCategories, err := s.ListCustomCategories(context.Background()); err == nil && len(customCategories) > 0 {
		specs := make([]embed.CustomCategorySpec, len(customCategories))
		for i, c := range customCategories {
			specs[i] = embed.CustomCategorySpec{Name: c.Name, Keywords: c.Keywords}
		}
		if err := embedder.LoadCustomCategories(context.Background(), specs); err != nil {
			log.Warn().Err(err).Msg("loading custom categories into embedding provider failed")
		}
	}

	return &app{
		cfg:      cfg,
		log:      log,
		store:    s,
		pipeline: pipeline,
		embedder: embedder,
		applier:  apply.New(s, log),
	}, nil
}

func (a *app) scanOrchestrator() *scan.Orchestrator {
	return scan.New(a.store, a.pipeline, a.embedder, a.cfg.ScanConcurrency, a.log)
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

func main() {
	rootCmd.AddCommand(scanCmd, filesCmd, classifyCmd, rulesCmd, applyCmd, undoCmd, historyCmd, settingsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
