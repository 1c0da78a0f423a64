// Package apply moves classified files into their resolved destinations
// and keeps the audit trail (ActionBatch/ActionLog) needed to undo a
// batch, grounded on action_service.py's build_preview/apply_organize/
// undo_organize (§4.9).
package apply

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KimHands/clasp/pkg/clasperr"
	"github.com/KimHands/clasp/pkg/classify"
	"github.com/KimHands/clasp/pkg/destination"
	"github.com/KimHands/clasp/pkg/store"
)

// maxRenameAttempts bounds the "_1", "_2", ... counter search so a
// pathological directory full of numbered collisions can't loop forever.
const maxRenameAttempts = 1000

// Engine wires the destination resolver and the store together for one
// apply/undo surface.
type Engine struct {
	store *store.Store
	log   zerolog.Logger
}

func New(s *store.Store, log zerolog.Logger) *Engine {
	return &Engine{store: s, log: log}
}

// Conflict describes one file whose resolved destination already exists.
type Conflict struct {
	Filename      string
	Destination   string
	ConflictType  string
}

// TreeFolder is one top-level folder entry in a preview tree.
type TreeFolder struct {
	Folder   string
	Children []string
}

// PreviewResult is the read-only plan apply() would execute.
type PreviewResult struct {
	TotalFiles       int
	ExcludedFiles    int
	FoldersToCreate  int
	Conflicts        []Conflict
	Tree             []TreeFolder
}

// Preview computes the move plan for scanID without touching the
// filesystem (§4.9 build_preview).
func (e *Engine) Preview(ctx context.Context, scanID string) (PreviewResult, error) {
	rows, rules, err := e.loadScan(ctx, scanID)
	if err != nil {
		return PreviewResult{}, err
	}
	baseDir := commonParentDir(rows)

	var result PreviewResult
	foldersToCreate := map[string]bool{}
	treeOrder := []string{}
	treeByFolder := map[string][]string{}

	for _, bc := range rows {
		if bc.Classification.ConfidenceScore < classify.UnclassifiedThreshold {
			result.ExcludedFiles++
			continue
		}
		result.TotalFiles++

		dest := destinationFor(bc, baseDir, rules)
		destDir := filepath.Dir(dest)
		foldersToCreate[destDir] = true

		if dest != bc.File.Path {
			if _, err := os.Stat(dest); err == nil {
				result.Conflicts = append(result.Conflicts, Conflict{
					Filename:     bc.File.Filename,
					Destination:  dest,
					ConflictType: "duplicate_name",
				})
			}
		}

		rel, err := filepath.Rel(baseDir, destDir)
		if err != nil {
			rel = destDir
		}
		top := rel
		if idx := indexOfSeparator(rel); idx >= 0 {
			top = rel[:idx]
		}
		if _, ok := treeByFolder[top]; !ok {
			treeOrder = append(treeOrder, top)
		}
		treeByFolder[top] = append(treeByFolder[top], bc.File.Filename)
	}

	result.FoldersToCreate = len(foldersToCreate)
	for _, folder := range treeOrder {
		result.Tree = append(result.Tree, TreeFolder{Folder: folder, Children: treeByFolder[folder]})
	}
	return result, nil
}

// ApplyResult is the summary apply() returns once every eligible file
// has been attempted.
type ApplyResult struct {
	Moved       int
	Skipped     int
	Failed      int
	ActionLogID string
}

// Apply moves every file above the classification threshold to its
// resolved destination under the given conflict policy, recording one
// ActionBatch and one ActionLog row per attempt (§4.9 apply_organize).
// A single file's OS error never aborts the rest of the batch.
func (e *Engine) Apply(ctx context.Context, scanID string, resolution store.ConflictResolution, folderPath string) (ApplyResult, error) {
	rows, rules, err := e.loadScan(ctx, scanID)
	if err != nil {
		return ApplyResult{}, err
	}
	// Anchored on the scan's own folder_path rather than re-derived from
	// the files' current paths: once a prior apply has moved files into
	// category subfolders, recomputing the common parent from their new
	// locations would nest every subsequent apply one level deeper,
	// breaking the idempotence invariant (§8) that a second apply on a
	// quiescent folder moves nothing.
	baseDir := filepath.Clean(folderPath)

	actionLogID := uuid.NewString()
	now := time.Now().UTC()

	batchID, err := e.store.CreateBatch(ctx, store.ActionBatch{
		ActionLogID:        actionLogID,
		FolderPath:          folderPath,
		ScanID:              scanID,
		ConflictResolution:  resolution,
		ExecutedAt:          now,
	})
	if err != nil {
		return ApplyResult{}, err
	}
	_ = batchID

	var result ApplyResult
	result.ActionLogID = actionLogID

	tx, err := e.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return ApplyResult{}, err
	}
	defer tx.Rollback()

	for _, bc := range rows {
		if bc.Classification.ConfidenceScore < classify.UnclassifiedThreshold {
			result.Skipped++
			continue
		}

		dest := destinationFor(bc, baseDir, rules)
		if filepath.Clean(dest) == filepath.Clean(bc.File.Path) {
			result.Skipped++
			continue
		}

		final, conflictSkip := resolveConflict(dest, resolution)
		if conflictSkip {
			result.Skipped++
			if err := store.AppendLog(ctx, tx, store.ActionLog{
				ActionLogID:     actionLogID,
				ActionType:      store.ActionSkip,
				SourcePath:      bc.File.Path,
				DestinationPath: dest,
				ExecutedAt:      time.Now().UTC(),
			}); err != nil {
				return ApplyResult{}, err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
			result.Failed++
			e.log.Warn().Err(err).Str("file", bc.File.Path).Msg("apply: mkdir failed")
			if logErr := store.AppendLog(ctx, tx, store.ActionLog{
				ActionLogID: actionLogID, ActionType: store.ActionFailed,
				SourcePath: bc.File.Path, DestinationPath: final, ExecutedAt: time.Now().UTC(),
			}); logErr != nil {
				return ApplyResult{}, logErr
			}
			continue
		}

		if err := os.Rename(bc.File.Path, final); err != nil {
			result.Failed++
			e.log.Warn().Err(err).Str("file", bc.File.Path).Msg("apply: move failed")
			if logErr := store.AppendLog(ctx, tx, store.ActionLog{
				ActionLogID: actionLogID, ActionType: store.ActionFailed,
				SourcePath: bc.File.Path, DestinationPath: final, ExecutedAt: time.Now().UTC(),
			}); logErr != nil {
				return ApplyResult{}, logErr
			}
			continue
		}

		if err := store.UpdateFilePath(ctx, tx, bc.File.ID, final); err != nil {
			return ApplyResult{}, err
		}
		if err := store.AppendLog(ctx, tx, store.ActionLog{
			ActionLogID: actionLogID, ActionType: store.ActionMove,
			SourcePath: bc.File.Path, DestinationPath: final, ExecutedAt: time.Now().UTC(),
		}); err != nil {
			return ApplyResult{}, err
		}
		result.Moved++
	}

	if err := tx.Commit(); err != nil {
		return ApplyResult{}, err
	}
	if err := e.store.FinalizeBatch(ctx, actionLogID, result.Moved, result.Skipped, result.Failed); err != nil {
		return ApplyResult{}, err
	}
	return result, nil
}

// Unrestorable names one move log undo() could not reverse.
type Unrestorable struct {
	Filename string
	Reason   string
}

// UndoResult summarizes one undo pass.
type UndoResult struct {
	Restored     int
	Failed       int
	Unrestorable []Unrestorable
}

// Undo reverses every move log in actionLogID, in whatever order the
// store returns them, and marks the batch undone even on partial
// restore (§4.9 undo_organize).
func (e *Engine) Undo(ctx context.Context, actionLogID string) (UndoResult, error) {
	allUndone, err := e.store.BatchIsFullyUndone(ctx, actionLogID)
	if err != nil {
		return UndoResult{}, err
	}
	if allUndone {
		return UndoResult{}, clasperr.New(clasperr.AlreadyUndone, "")
	}

	logs, err := e.store.MoveLogsForBatch(ctx, actionLogID)
	if err != nil {
		return UndoResult{}, err
	}

	var result UndoResult
	for _, l := range logs {
		if l.IsUndone {
			continue
		}

		if _, err := os.Stat(l.DestinationPath); os.IsNotExist(err) {
			result.Failed++
			result.Unrestorable = append(result.Unrestorable, Unrestorable{
				Filename: filepath.Base(l.DestinationPath),
				Reason:   "destination_file_not_found",
			})
			continue
		}

		if err := os.MkdirAll(filepath.Dir(l.SourcePath), 0o755); err != nil {
			result.Failed++
			result.Unrestorable = append(result.Unrestorable, Unrestorable{
				Filename: filepath.Base(l.DestinationPath), Reason: "move_failed",
			})
			continue
		}
		if err := os.Rename(l.DestinationPath, l.SourcePath); err != nil {
			result.Failed++
			result.Unrestorable = append(result.Unrestorable, Unrestorable{
				Filename: filepath.Base(l.DestinationPath), Reason: "move_failed",
			})
			continue
		}

		if f, ok, err := e.store.FindFileByPath(ctx, l.DestinationPath); err == nil && ok {
			tx, err := e.store.DB().BeginTx(ctx, nil)
			if err != nil {
				return UndoResult{}, err
			}
			if err := store.UpdateFilePath(ctx, tx, f.ID, l.SourcePath); err != nil {
				tx.Rollback()
				return UndoResult{}, err
			}
			if err := tx.Commit(); err != nil {
				return UndoResult{}, err
			}
		}

		if err := e.store.MarkLogUndone(ctx, l.ID); err != nil {
			return UndoResult{}, err
		}
		result.Restored++
	}

	if err := e.store.MarkBatchUndone(ctx, actionLogID); err != nil {
		return UndoResult{}, err
	}
	return result, nil
}

// History returns every apply batch for folderPath, newest first.
func (e *Engine) History(ctx context.Context, folderPath string) ([]store.ActionBatch, error) {
	return e.store.History(ctx, folderPath)
}

func (e *Engine) loadScan(ctx context.Context, scanID string) ([]store.BestClassification, []store.Rule, error) {
	rows, err := e.store.BestClassifications(ctx, scanID)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, clasperr.New(clasperr.ScanNotFound, "no classification results for this scan id")
	}
	rules, err := e.store.ListRules(ctx)
	if err != nil {
		return nil, nil, err
	}
	return rows, rules, nil
}

// commonParentDir computes the deepest directory common to every file's
// parent directory, falling back to the first file's parent when the
// paths share no common ancestor (§4.8 step 1).
func commonParentDir(rows []store.BestClassification) string {
	if len(rows) == 0 {
		return ""
	}
	common := filepath.Dir(rows[0].File.Path)
	for _, bc := range rows[1:] {
		common = commonPathPrefix(common, filepath.Dir(bc.File.Path))
		if common == "" || common == "." {
			return filepath.Dir(rows[0].File.Path)
		}
	}
	return common
}

func commonPathPrefix(a, b string) string {
	aParts := splitPath(a)
	bParts := splitPath(b)
	n := len(aParts)
	if len(bParts) < n {
		n = len(bParts)
	}
	i := 0
	for i < n && aParts[i] == bParts[i] {
		i++
	}
	if i == 0 {
		return ""
	}
	return filepath.Join(aParts[:i]...)
}

func splitPath(p string) []string {
	p = filepath.Clean(p)
	var parts []string
	for {
		dir, file := filepath.Split(p)
		dir = filepath.Clean(dir)
		if file != "" {
			parts = append([]string{file}, parts...)
		}
		if dir == p || dir == "." || dir == string(filepath.Separator) {
			if dir != "." {
				parts = append([]string{dir}, parts...)
			}
			break
		}
		p = dir
	}
	return parts
}

func destinationFor(bc store.BestClassification, baseDir string, rules []store.Rule) string {
	hasCls := bc.Classification.Category != "" || bc.Classification.Tag != ""
	return destination.Resolve(bc.File, bc.Classification, hasCls, baseDir, rules)
}

// resolveConflict applies the conflict policy to a not-yet-checked
// destination path, returning the final path to use and whether the
// file should instead be skipped entirely (§4.9 _resolve_conflict).
func resolveConflict(dest string, resolution store.ConflictResolution) (final string, skip bool) {
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest, false
	}

	switch resolution {
	case store.ConflictOverwrite:
		return dest, false
	case store.ConflictSkip:
		return "", true
	default: // rename
		ext := filepath.Ext(dest)
		base := dest[:len(dest)-len(ext)]
		for i := 1; i <= maxRenameAttempts; i++ {
			candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
			if _, err := os.Stat(candidate); os.IsNotExist(err) {
				return candidate, false
			}
		}
		return "", true
	}
}

func indexOfSeparator(path string) int {
	for i, c := range path {
		if c == filepath.Separator {
			return i
		}
	}
	return -1
}
