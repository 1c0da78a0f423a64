package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// LatestManualCategory returns the category of the most recent manual
// classification for fileID, if any — used by the scan orchestrator to
// seed Tier-1's manual-override shortcut on re-scan.
func LatestManualCategory(ctx context.Context, tx *sql.Tx, fileID int64) (string, bool, error) {
	var category sql.NullString
	err := tx.QueryRowContext(ctx, `
		SELECT category FROM classifications
		WHERE file_id = ? AND is_manual = 1
		ORDER BY classified_at DESC LIMIT 1`, fileID).Scan(&category)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return category.String, category.Valid, nil
}

// ReplaceAutoClassification purges any prior non-manual row for
// (fileID, scanID) and inserts the new result, per §3's latest-wins
// invariant.
func ReplaceAutoClassification(ctx context.Context, tx *sql.Tx, c Classification) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM classifications WHERE file_id = ? AND scan_id = ? AND is_manual = 0`,
		c.FileID, c.ScanID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO classifications (file_id, scan_id, category, tag, tier_used, confidence_score, is_manual, classified_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		c.FileID, c.ScanID, nullableString(c.Category), nullableString(c.Tag), c.TierUsed, c.ConfidenceScore, c.ClassifiedAt)
	return err
}

// SetManualClassification records a user-driven override. Per §8's
// invariant, manual rows always carry confidence_score=1.0, tier_used=0.
func (s *Store) SetManualClassification(ctx context.Context, fileID int64, category, tag string, classifiedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO classifications (file_id, scan_id, category, tag, tier_used, confidence_score, is_manual, classified_at)
		VALUES (?, '', ?, ?, 0, 1.0, 1, ?)`,
		fileID, nullableString(category), nullableString(tag), classifiedAt)
	return err
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// BestClassifications returns the best-classification view (§3) for a
// scan: per file, the manual row if any, else the most recent auto row
// for scanID.
func (s *Store) BestClassifications(ctx context.Context, scanID string) ([]BestClassification, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH manual AS (
			SELECT file_id, category, tag, tier_used, confidence_score, is_manual, classified_at,
			       ROW_NUMBER() OVER (PARTITION BY file_id ORDER BY classified_at DESC) AS rn
			FROM classifications WHERE is_manual = 1
		),
		auto AS (
			SELECT file_id, category, tag, tier_used, confidence_score, is_manual, classified_at
			FROM classifications WHERE is_manual = 0 AND scan_id = ?
		)
		SELECT f.id, f.path, f.filename, f.extension, f.created_at, f.modified_at, f.size, f.extracted_text_summary,
		       COALESCE(m.category, a.category), COALESCE(m.tag, a.tag),
		       COALESCE(m.tier_used, a.tier_used), COALESCE(m.confidence_score, a.confidence_score),
		       COALESCE(m.is_manual, a.is_manual, 0), COALESCE(m.classified_at, a.classified_at)
		FROM files f
		LEFT JOIN manual m ON m.file_id = f.id AND m.rn = 1
		LEFT JOIN auto a ON a.file_id = f.id
		WHERE m.file_id IS NOT NULL OR a.file_id IS NOT NULL`, scanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BestClassification
	for rows.Next() {
		var bc BestClassification
		var ext, summary, category, tag sql.NullString
		var created, modified, classifiedAt sql.NullTime
		var size, tier sql.NullInt64
		var score sql.NullFloat64
		var isManual sql.NullBool
		if err := rows.Scan(&bc.File.ID, &bc.File.Path, &bc.File.Filename, &ext, &created, &modified, &size, &summary,
			&category, &tag, &tier, &score, &isManual, &classifiedAt); err != nil {
			return nil, err
		}
		bc.File.Extension = ext.String
		bc.File.ExtractedTextSummary = summary.String
		bc.File.Size = size.Int64
		if created.Valid {
			bc.File.CreatedAt = created.Time
		}
		if modified.Valid {
			bc.File.ModifiedAt = modified.Time
		}
		bc.Classification = Classification{
			FileID:          bc.File.ID,
			ScanID:          scanID,
			Category:        category.String,
			Tag:             tag.String,
			TierUsed:        int(tier.Int64),
			ConfidenceScore: score.Float64,
			IsManual:        isManual.Bool,
		}
		if classifiedAt.Valid {
			bc.Classification.ClassifiedAt = classifiedAt.Time
		}
		out = append(out, bc)
	}
	return out, rows.Err()
}
