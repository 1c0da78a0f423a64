package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/KimHands/clasp/pkg/builtin"
	"github.com/KimHands/clasp/pkg/clasperr"
)

// ListCustomCategories returns every user-defined category, for
// /settings/categories and for seeding the embedding provider's
// prototype map on startup.
func (s *Store) ListCustomCategories(ctx context.Context) ([]CustomCategory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, keywords_json FROM custom_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomCategory
	for rows.Next() {
		var c CustomCategory
		var keywordsJSON string
		if err := rows.Scan(&c.ID, &c.Name, &keywordsJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(keywordsJSON), &c.Keywords)
		out = append(out, c)
	}
	return out, rows.Err()
}

func isBuiltinCategory(name string) bool {
	for _, c := range builtin.BaseCategories {
		if c == name {
			return true
		}
	}
	return false
}

// CreateCustomCategory rejects a name colliding with a built-in category
// or an existing custom one, mirroring CreateCustomExtension's policy.
func (s *Store) CreateCustomCategory(ctx context.Context, name string, keywords []string) (CustomCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CustomCategory{}, clasperr.New(clasperr.InvalidType, "category name is required")
	}
	if isBuiltinCategory(name) {
		return CustomCategory{}, clasperr.New(clasperr.CategoryConflict, "'"+name+"' is already a built-in category")
	}

	var existing int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM custom_categories WHERE name = ?`, name).Scan(&existing)
	if err == nil {
		return CustomCategory{}, clasperr.New(clasperr.CategoryConflict, "'"+name+"' is already registered")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return CustomCategory{}, err
	}

	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	keywordsJSON, err := json.Marshal(cleaned)
	if err != nil {
		return CustomCategory{}, err
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO custom_categories (name, keywords_json) VALUES (?, ?)`, name, string(keywordsJSON))
	if err != nil {
		return CustomCategory{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return CustomCategory{}, err
	}
	return CustomCategory{ID: id, Name: name, Keywords: cleaned}, nil
}

func (s *Store) DeleteCustomCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM custom_categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return clasperr.New(clasperr.CategoryNotFound, "")
	}
	return nil
}
