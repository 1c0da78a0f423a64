package store

import (
	"context"
	"database/sql"
	"errors"
)

// UpsertFile inserts a new File row or updates the existing one for the
// same path, matching §4.6 stage 2's "existing ? update : insert"
// behavior. Returns the row's id.
func UpsertFile(ctx context.Context, tx *sql.Tx, f File) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM files WHERE path = ?`, f.Path).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx, `
			INSERT INTO files (path, filename, extension, created_at, modified_at, size, extracted_text_summary)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			f.Path, f.Filename, f.Extension, f.CreatedAt, f.ModifiedAt, f.Size, f.ExtractedTextSummary)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	case err != nil:
		return 0, err
	default:
		_, err := tx.ExecContext(ctx, `
			UPDATE files SET filename = ?, extension = ?, size = ?, modified_at = ?
			WHERE id = ?`,
			f.Filename, f.Extension, f.Size, f.ModifiedAt, id)
		return id, err
	}
}

// SetExtractedTextSummary writes the body-extraction result for stage 4.
func SetExtractedTextSummary(ctx context.Context, tx *sql.Tx, fileID int64, summary string) error {
	_, err := tx.ExecContext(ctx, `UPDATE files SET extracted_text_summary = ? WHERE id = ?`, summary, fileID)
	return err
}

// UpdateFilePath is used by the apply/undo engine after a successful move.
func UpdateFilePath(ctx context.Context, tx *sql.Tx, fileID int64, newPath string) error {
	_, err := tx.ExecContext(ctx, `UPDATE files SET path = ? WHERE id = ?`, newPath, fileID)
	return err
}

// FindFileByPath is used by undo to resolve the File row matching a
// destination path before restoring it to its source.
func (s *Store) FindFileByPath(ctx context.Context, path string) (File, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, filename, extension, created_at, modified_at, size, extracted_text_summary
		FROM files WHERE path = ?`, path)
	var f File
	var created, modified sql.NullTime
	var ext, summary sql.NullString
	var size sql.NullInt64
	if err := row.Scan(&f.ID, &f.Path, &f.Filename, &ext, &created, &modified, &size, &summary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return File{}, false, nil
		}
		return File{}, false, err
	}
	f.Extension = ext.String
	f.ExtractedTextSummary = summary.String
	f.Size = size.Int64
	if created.Valid {
		f.CreatedAt = created.Time
	}
	if modified.Valid {
		f.ModifiedAt = modified.Time
	}
	return f, true, nil
}

func (s *Store) GetFile(ctx context.Context, id int64) (File, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, filename, extension, created_at, modified_at, size, extracted_text_summary
		FROM files WHERE id = ?`, id)
	var f File
	var created, modified sql.NullTime
	var ext, summary sql.NullString
	var size sql.NullInt64
	if err := row.Scan(&f.ID, &f.Path, &f.Filename, &ext, &created, &modified, &size, &summary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return File{}, false, nil
		}
		return File{}, false, err
	}
	f.Extension = ext.String
	f.ExtractedTextSummary = summary.String
	f.Size = size.Int64
	if created.Valid {
		f.CreatedAt = created.Time
	}
	if modified.Valid {
		f.ModifiedAt = modified.Time
	}
	return f, true, nil
}
