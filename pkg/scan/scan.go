package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/KimHands/clasp/pkg/classify"
	"github.com/KimHands/clasp/pkg/embed"
	"github.com/KimHands/clasp/pkg/extract"
	"github.com/KimHands/clasp/pkg/similarity"
	"github.com/KimHands/clasp/pkg/store"
)

// batchSize is how many upserts/inserts accumulate before a commit
// (§4.6, matching scan_service.py's BATCH_SIZE).
const batchSize = 50

// textExtractable mirrors scan_service.py's TEXT_EXTRACTABLE: only these
// extensions get a body-extraction attempt in stage 4.
var textExtractable = map[string]bool{
	".pdf": true, ".docx": true, ".doc": true, ".txt": true, ".md": true,
}

// Orchestrator runs scans against one store using one classification
// and embedding stack.
type Orchestrator struct {
	store       *store.Store
	pipeline    *classify.Pipeline
	embedder    *embed.Provider
	log         zerolog.Logger
	sem         chan struct{}
}

// New builds an Orchestrator with a bounded worker pool of the given
// concurrency for stages 3-5's blocking extraction/embedding/LLM calls.
func New(s *store.Store, pipeline *classify.Pipeline, embedder *embed.Provider, concurrency int, log zerolog.Logger) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		store:    s,
		pipeline: pipeline,
		embedder: embedder,
		log:      log,
		sem:      make(chan struct{}, concurrency),
	}
}

func (o *Orchestrator) acquireSem(ctx context.Context) error {
	select {
	case o.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) releaseSem() {
	<-o.sem
}

// Run executes the 7-stage scan pipeline (§4.6) and returns a channel of
// progress events. The channel is closed once stage 7 (or a stage -1
// failure) has been emitted. A single goroutine owns the channel so
// (stage, completed) ordering is never raced across workers.
func (o *Orchestrator) Run(ctx context.Context, scanID, folderPath string) <-chan ProgressEvent {
	events := make(chan ProgressEvent, 16)

	go func() {
		defer close(events)
		defer func() {
			if r := recover(); r != nil {
				o.log.Error().Interface("panic", r).Str("scan_id", scanID).Msg("scan: recovered panic")
				events <- ProgressEvent{Stage: StageFailed, Message: fmt.Sprintf("scan failed: %v", r)}
			}
		}()
		if err := o.run(ctx, scanID, folderPath, events); err != nil {
			o.log.Error().Err(err).Str("scan_id", scanID).Msg("scan failed")
			events <- ProgressEvent{Stage: StageFailed, Message: fmt.Sprintf("scan failed: %v", err)}
		}
	}()

	return events
}

func (o *Orchestrator) run(ctx context.Context, scanID, folderPath string, events chan<- ProgressEvent) error {
	events <- ProgressEvent{Stage: StageCollect, Message: "collecting files"}
	paths, err := collectFiles(folderPath)
	if err != nil {
		return err
	}
	total := len(paths)

	fileIDs, err := o.stageMetadata(ctx, events, total, paths)
	if err != nil {
		return err
	}

	coverTexts, err := o.stageCover(ctx, events, total, paths, fileIDs)
	if err != nil {
		return err
	}

	extractedTexts, err := o.stageBody(ctx, events, total, paths, fileIDs)
	if err != nil {
		return err
	}

	categoryOf, err := o.stageClassify(ctx, events, scanID, total, paths, fileIDs, extractedTexts, coverTexts)
	if err != nil {
		return err
	}

	events <- ProgressEvent{Stage: StageSimilarity, Message: "computing similarity groups", Total: total, Completed: total}
	inferTag := func(ctx context.Context, text, category string) (string, bool) {
		if o.embedder == nil {
			return "", false
		}
		tag, ok, err := o.embedder.InferTag(ctx, text, category, embed.DefaultTagThreshold)
		if err != nil {
			return "", false
		}
		return tag, ok
	}
	if err := similarity.Recompute(ctx, o.store, categoryOf, inferTag); err != nil {
		o.log.Warn().Err(err).Msg("scan: similarity recompute failed")
	}

	events <- ProgressEvent{Stage: StageComplete, Message: "done", Total: total, Completed: total}
	return nil
}

// stageMetadata upserts every file's stat metadata, batching commits of
// batchSize rows, and returns each path's resolved file id.
func (o *Orchestrator) stageMetadata(ctx context.Context, events chan<- ProgressEvent, total int, paths []string) (map[string]int64, error) {
	events <- ProgressEvent{Stage: StageMetadata, Message: "reading metadata", Total: total}

	fileIDs := make(map[string]int64, total)
	tx, err := o.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	commit := func() error {
		if err := tx.Commit(); err != nil {
			return err
		}
		tx, err = o.store.DB().BeginTx(ctx, nil)
		return err
	}

	for i, p := range paths {
		filename := filepath.Base(p)
		ext := strings.ToLower(filepath.Ext(filename))
		size, modifiedUnix, ok := fileMetadata(p)
		f := store.File{Path: p, Filename: filename, Extension: ext}
		if ok {
			f.Size = size
			f.ModifiedAt = time.Unix(modifiedUnix, 0).UTC()
			f.CreatedAt = f.ModifiedAt
		}

		id, err := store.UpsertFile(ctx, tx, f)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		fileIDs[p] = id

		if (i+1)%batchSize == 0 || i == total-1 {
			if err := commit(); err != nil {
				return nil, err
			}
		}
		events <- ProgressEvent{Stage: StageMetadata, Message: "reading metadata", Total: total, Completed: i + 1, CurrentFile: filename}
	}
	tx.Rollback()
	return fileIDs, nil
}

type coverResult struct {
	path      string
	coverText string
	embedding []byte
	ok        bool
}

// stageCover detects cover pages in parallel via the worker pool, then
// writes every result back in the single-writer goroutine. Returns each
// detected cover's text, keyed by path, for stage 5's embedding tier.
func (o *Orchestrator) stageCover(ctx context.Context, events chan<- ProgressEvent, total int, paths []string, fileIDs map[string]int64) (map[string]string, error) {
	events <- ProgressEvent{Stage: StageCover, Message: "detecting covers", Total: total}
	coverTexts := make(map[string]string, total)

	results := make(chan coverResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			if err := o.acquireSem(gctx); err != nil {
				return err
			}
			defer o.releaseSem()

			text, ok := extract.ExtractCoverText(p)
			res := coverResult{path: p, ok: ok}
			if ok {
				res.coverText = text
				if o.embedder != nil {
					if emb, err := o.embedder.ComputeEmbedding(gctx, text); err == nil {
						res.embedding = emb
					}
				}
			}
			select {
			case results <- res:
			case <-gctx.Done():
				return gctx.Err()
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait(); close(results) }()

	tx, err := o.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	completed := 0
	for res := range results {
		completed++
		if res.ok {
			coverTexts[res.path] = res.coverText
			id, known := fileIDs[res.path]
			if known {
				embJSON := ""
				if res.embedding != nil {
					embJSON = string(res.embedding)
				}
				if err := store.SaveCover(ctx, tx, id, res.coverText, embJSON, time.Now().UTC()); err != nil {
					tx.Rollback()
					return nil, err
				}
			}
		}
		if completed%batchSize == 0 || completed == len(paths) {
			if err := tx.Commit(); err != nil {
				return nil, err
			}
			if completed != len(paths) {
				tx, err = o.store.DB().BeginTx(ctx, nil)
				if err != nil {
					return nil, err
				}
			}
		}
		events <- ProgressEvent{Stage: StageCover, Message: "detecting covers", Total: total, Completed: completed, CurrentFile: filepath.Base(res.path)}
	}
	if err := <-done; err != nil {
		return nil, err
	}
	return coverTexts, nil
}

type bodyResult struct {
	path string
	text string
	ok   bool
}

// stageBody extracts body text for every text-extractable file, again
// dispatched through the worker pool.
func (o *Orchestrator) stageBody(ctx context.Context, events chan<- ProgressEvent, total int, paths []string, fileIDs map[string]int64) (map[string]string, error) {
	events <- ProgressEvent{Stage: StageBody, Message: "extracting body text", Total: total}

	extractedTexts := make(map[string]string, total)
	results := make(chan bodyResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range paths {
		p := p
		ext := strings.ToLower(filepath.Ext(p))
		if !textExtractable[ext] {
			results <- bodyResult{path: p}
			continue
		}
		g.Go(func() error {
			if err := o.acquireSem(gctx); err != nil {
				return err
			}
			defer o.releaseSem()
			text, ok := extract.ExtractText(p)
			select {
			case results <- bodyResult{path: p, text: text, ok: ok}:
			case <-gctx.Done():
				return gctx.Err()
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait(); close(results) }()

	tx, err := o.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	completed := 0
	for res := range results {
		completed++
		if res.ok {
			extractedTexts[res.path] = res.text
			if id, known := fileIDs[res.path]; known {
				summary := res.text
				if len(summary) > 500 {
					summary = summary[:500]
				}
				if err := store.SetExtractedTextSummary(ctx, tx, id, summary); err != nil {
					tx.Rollback()
					return nil, err
				}
			}
		}
		if completed%batchSize == 0 || completed == len(paths) {
			if err := tx.Commit(); err != nil {
				return nil, err
			}
			if completed != len(paths) {
				tx, err = o.store.DB().BeginTx(ctx, nil)
				if err != nil {
					return nil, err
				}
			}
		}
		events <- ProgressEvent{Stage: StageBody, Message: "extracting body text", Total: total, Completed: completed, CurrentFile: filepath.Base(res.path)}
	}
	if err := <-done; err != nil {
		return nil, err
	}
	return extractedTexts, nil
}

type classifyResult struct {
	path   string
	result classify.Result
}

// stageClassify runs the ensemble over every file, again through the
// worker pool (Tier-3 is an HTTP round trip), and returns the winning
// category per file id for the similarity stage's auto-tag derivation.
func (o *Orchestrator) stageClassify(ctx context.Context, events chan<- ProgressEvent, scanID string, total int, paths []string, fileIDs map[string]int64, extractedTexts, coverTexts map[string]string) (map[int64]string, error) {
	events <- ProgressEvent{Stage: StageClassify, Message: "running classification", Total: total}

	results := make(chan classifyResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			if err := o.acquireSem(gctx); err != nil {
				return err
			}
			defer o.releaseSem()

			id := fileIDs[p]
			filename := filepath.Base(p)
			ext := strings.ToLower(filepath.Ext(filename))

			var manualCategory string
			if tx, err := o.store.DB().BeginTx(gctx, nil); err == nil {
				manualCategory, _, _ = store.LatestManualCategory(gctx, tx, id)
				tx.Rollback()
			}

			in := classify.Input{
				FilePath:       p,
				Filename:       filename,
				Extension:      ext,
				ExtractedText:  extractedTexts[p],
				CoverText:      coverTexts[p],
				ManualCategory: manualCategory,
			}
			result := o.pipeline.Classify(gctx, in)
			select {
			case results <- classifyResult{path: p, result: result}:
			case <-gctx.Done():
				return gctx.Err()
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait(); close(results) }()

	categoryOf := make(map[int64]string, total)
	tx, err := o.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	completed := 0
	now := time.Now().UTC()
	for res := range results {
		completed++
		id, known := fileIDs[res.path]
		if known {
			c := store.Classification{
				FileID:          id,
				ScanID:          scanID,
				Category:        res.result.Category,
				Tag:             res.result.Tag,
				TierUsed:        int(res.result.TierUsed),
				ConfidenceScore: float64(res.result.Confidence),
				ClassifiedAt:    now,
			}
			if err := store.ReplaceAutoClassification(ctx, tx, c); err != nil {
				tx.Rollback()
				return nil, err
			}
			categoryOf[id] = res.result.Category
		}
		if completed%batchSize == 0 || completed == len(paths) {
			if err := tx.Commit(); err != nil {
				return nil, err
			}
			if completed != len(paths) {
				tx, err = o.store.DB().BeginTx(ctx, nil)
				if err != nil {
					return nil, err
				}
			}
		}
		events <- ProgressEvent{Stage: StageClassify, Message: "running classification", Total: total, Completed: completed, CurrentFile: filepath.Base(res.path)}
	}
	if err := <-done; err != nil {
		return nil, err
	}
	return categoryOf, nil
}
