package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SaveCover upserts the one-to-one CoverPage row for a file, matching
// cover_service.py's save_cover: update in place if a row already exists.
func SaveCover(ctx context.Context, tx *sql.Tx, fileID int64, coverText, embeddingJSON string, detectedAt time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE cover_pages SET cover_text = ?, embedding = ?, detected_at = ? WHERE file_id = ?`,
		coverText, embeddingJSON, detectedAt, fileID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO cover_pages (file_id, cover_text, embedding, detected_at) VALUES (?, ?, ?, ?)`,
		fileID, coverText, embeddingJSON, detectedAt)
	return err
}

// CoverWithEmbedding is the subset of CoverPage the similarity grouper
// needs: a file id and the raw embedding JSON.
type CoverWithEmbedding struct {
	FileID    int64
	CoverText string
	Embedding string
}

// AllCoversWithEmbedding returns every CoverPage row with a non-empty
// embedding, for C7's pairwise pass.
func (s *Store) AllCoversWithEmbedding(ctx context.Context) ([]CoverWithEmbedding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT file_id, cover_text, embedding FROM cover_pages
		WHERE embedding IS NOT NULL AND embedding != ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CoverWithEmbedding
	for rows.Next() {
		var c CoverWithEmbedding
		var coverText sql.NullString
		if err := rows.Scan(&c.FileID, &coverText, &c.Embedding); err != nil {
			return nil, err
		}
		c.CoverText = coverText.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReplaceSimilarityGroups truncates the table and inserts the freshly
// computed groups, inside one transaction, matching §4.7 step 3/6.
func (s *Store) ReplaceSimilarityGroups(ctx context.Context, groups []CoverSimilarityGroup) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cover_similarity_groups`); err != nil {
		return err
	}
	for _, g := range groups {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cover_similarity_groups (group_id, file_id, similarity_score, auto_tag)
			VALUES (?, ?, ?, ?)`,
			g.GroupID, g.FileID, g.SimilarityScore, nullableString(g.AutoTag)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SimilarMembers returns the other files sharing fileID's similarity
// group, if it belongs to one.
func (s *Store) SimilarMembers(ctx context.Context, fileID int64) ([]CoverSimilarityGroup, error) {
	var groupID string
	err := s.db.QueryRowContext(ctx, `SELECT group_id FROM cover_similarity_groups WHERE file_id = ?`, fileID).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, file_id, similarity_score, auto_tag
		FROM cover_similarity_groups WHERE group_id = ? AND file_id != ?`, groupID, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CoverSimilarityGroup
	for rows.Next() {
		var g CoverSimilarityGroup
		var autoTag sql.NullString
		if err := rows.Scan(&g.ID, &g.GroupID, &g.FileID, &g.SimilarityScore, &autoTag); err != nil {
			return nil, err
		}
		g.AutoTag = autoTag.String
		out = append(out, g)
	}
	return out, rows.Err()
}
