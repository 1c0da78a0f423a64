package store

import (
	"context"
	"database/sql"

	"github.com/KimHands/clasp/pkg/clasperr"
)

// CreateBatch inserts the ActionBatch row apply() starts with; counts
// begin at zero and are finalized by FinalizeBatch.
func (s *Store) CreateBatch(ctx context.Context, b ActionBatch) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO action_batches (action_log_id, folder_path, scan_id, moved, skipped, failed, conflict_resolution, executed_at, is_undone)
		VALUES (?, ?, ?, 0, 0, 0, ?, ?, 0)`,
		b.ActionLogID, b.FolderPath, b.ScanID, b.ConflictResolution, b.ExecutedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AppendLog records one per-file outcome of an apply/undo pass.
func AppendLog(ctx context.Context, tx *sql.Tx, l ActionLog) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO action_logs (action_log_id, action_type, source_path, destination_path, executed_at, is_undone)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.ActionLogID, l.ActionType, l.SourcePath, nullableString(l.DestinationPath), l.ExecutedAt, l.IsUndone)
	return err
}

// FinalizeBatch persists the final moved/skipped/failed counts.
func (s *Store) FinalizeBatch(ctx context.Context, actionLogID string, moved, skipped, failed int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE action_batches SET moved = ?, skipped = ?, failed = ? WHERE action_log_id = ?`,
		moved, skipped, failed, actionLogID)
	return err
}

// MoveLogsForBatch returns every `move` log belonging to a batch, the set
// undo() operates over.
func (s *Store) MoveLogsForBatch(ctx context.Context, actionLogID string) ([]ActionLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action_log_id, action_type, source_path, destination_path, executed_at, is_undone
		FROM action_logs WHERE action_log_id = ? AND action_type = ?`, actionLogID, ActionMove)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActionLog
	for rows.Next() {
		var l ActionLog
		var dest sql.NullString
		if err := rows.Scan(&l.ID, &l.ActionLogID, &l.ActionType, &l.SourcePath, &dest, &l.ExecutedAt, &l.IsUndone); err != nil {
			return nil, err
		}
		l.DestinationPath = dest.String
		out = append(out, l)
	}
	return out, rows.Err()
}

// MarkLogUndone flips is_undone on a single action_logs row.
func (s *Store) MarkLogUndone(ctx context.Context, logID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE action_logs SET is_undone = 1 WHERE id = ?`, logID)
	return err
}

// MarkBatchUndone flips is_undone on the batch, even on partial restore
// (§4.9's undo() always marks the batch at the end).
func (s *Store) MarkBatchUndone(ctx context.Context, actionLogID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE action_batches SET is_undone = 1 WHERE action_log_id = ?`, actionLogID)
	return err
}

// BatchIsFullyUndone reports whether every move log in the batch is
// already undone, the ALREADY_UNDONE guard in §4.9.
func (s *Store) BatchIsFullyUndone(ctx context.Context, actionLogID string) (bool, error) {
	logs, err := s.MoveLogsForBatch(ctx, actionLogID)
	if err != nil {
		return false, err
	}
	if len(logs) == 0 {
		return false, clasperr.New(clasperr.LogNotFound, "")
	}
	for _, l := range logs {
		if !l.IsUndone {
			return false, nil
		}
	}
	return true, nil
}

// History returns every batch for a folder, newest first.
func (s *Store) History(ctx context.Context, folderPath string) ([]ActionBatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action_log_id, folder_path, scan_id, moved, skipped, failed, conflict_resolution, executed_at, is_undone
		FROM action_batches WHERE folder_path = ? ORDER BY executed_at DESC`, folderPath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActionBatch
	for rows.Next() {
		var b ActionBatch
		if err := rows.Scan(&b.ID, &b.ActionLogID, &b.FolderPath, &b.ScanID, &b.Moved, &b.Skipped, &b.Failed,
			&b.ConflictResolution, &b.ExecutedAt, &b.IsUndone); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
