package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KimHands/clasp/pkg/classify"
	"github.com/KimHands/clasp/pkg/rules"
	"github.com/KimHands/clasp/pkg/store"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "clasp.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	rulesEngine, err := rules.Load(context.Background(), s)
	require.NoError(t, err)

	// Embedder and LLM client are both nil: the test fixture only uses
	// jpg/csv files, which yield no extracted or cover text, so Tier-1's
	// extension fallback resolves every file without the pipeline ever
	// reaching Tier-2.
	pipeline := classify.New(rulesEngine, nil, nil)
	o := New(s, pipeline, nil, 2, zerolog.Nop())
	return o, s
}

func drain(events <-chan ProgressEvent) []ProgressEvent {
	var out []ProgressEvent
	for e := range events {
		out = append(out, e)
	}
	return out
}

func TestRunScanClassifiesFilesByExtensionFallback(t *testing.T) {
	o, s := newTestOrchestrator(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.jpg"), []byte("fake jpeg bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte("a,b\n1,2\n"), 0o644))

	events := o.Run(context.Background(), "scan-1", dir)
	seen := drain(events)
	require.NotEmpty(t, seen)
	last := seen[len(seen)-1]
	assert.Equal(t, StageComplete, last.Stage)

	rows, err := s.BestClassifications(context.Background(), "scan-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byName := map[string]store.BestClassification{}
	for _, r := range rows {
		byName[r.File.Filename] = r
	}
	assert.Equal(t, "이미지", byName["photo.jpg"].Classification.Category)
	assert.Equal(t, "스프레드시트", byName["data.csv"].Classification.Category)
}

func TestRunScanEmitsStagesInIncreasingOrder(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0o644))

	events := o.Run(context.Background(), "scan-2", dir)
	seen := drain(events)

	lastStage := 0
	for _, e := range seen {
		if e.Stage == StageFailed {
			t.Fatalf("unexpected scan failure: %s", e.Message)
		}
		require.GreaterOrEqual(t, e.Stage, lastStage, "stage numbers must never regress within a single scan")
		lastStage = e.Stage
	}
	assert.Equal(t, StageComplete, lastStage)
}

func TestRunScanOnEmptyFolderCompletesWithoutError(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	dir := t.TempDir()

	events := o.Run(context.Background(), "scan-3", dir)
	seen := drain(events)
	require.NotEmpty(t, seen)
	assert.Equal(t, StageComplete, seen[len(seen)-1].Stage)
}

func TestRunScanNonexistentFolderEmitsFailedStage(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	events := o.Run(context.Background(), "scan-4", filepath.Join(t.TempDir(), "does-not-exist"))
	seen := drain(events)
	require.NotEmpty(t, seen)
	assert.Equal(t, StageFailed, seen[len(seen)-1].Stage)
}

func TestNewClampsConcurrencyToAtLeastOne(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "clasp.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	rulesEngine, err := rules.Load(context.Background(), s)
	require.NoError(t, err)

	o := New(s, classify.New(rulesEngine, nil, nil), nil, 0, zerolog.Nop())
	assert.Equal(t, 1, cap(o.sem))
}
