package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/KimHands/clasp/pkg/builtin"
	"github.com/KimHands/clasp/pkg/clasperr"
)

// ListCustomExtensions returns every user-defined extension mapping.
func (s *Store) ListCustomExtensions(ctx context.Context) ([]CustomExtension, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, extension, category FROM custom_extensions ORDER BY extension`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomExtension
	for rows.Next() {
		var e CustomExtension
		if err := rows.Scan(&e.ID, &e.Extension, &e.Category); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MergedExtensionMap returns the built-in map overlaid with custom rows;
// the built-in entry always wins on key collision (§9 Open Question
// resolution — rejection happens at write time in CreateCustomExtension,
// this is the read-time half of the same guarantee).
func (s *Store) MergedExtensionMap(ctx context.Context) (map[string]string, error) {
	custom, err := s.ListCustomExtensions(ctx)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]string, len(builtin.ExtensionCategory)+len(custom))
	for _, c := range custom {
		merged[c.Extension] = c.Category
	}
	for ext, cat := range builtin.ExtensionCategory {
		merged[ext] = cat
	}
	return merged, nil
}

// CreateCustomExtension rejects collisions against both the built-in map
// and any existing custom row, matching routers/settings.py.
func (s *Store) CreateCustomExtension(ctx context.Context, extension, category string) (CustomExtension, error) {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
	cat := strings.TrimSpace(category)
	if ext == "" || cat == "" {
		return CustomExtension{}, clasperr.New(clasperr.InvalidType, "extension and category are both required")
	}
	if builtin.IsBuiltinExtension(ext) {
		return CustomExtension{}, clasperr.New(clasperr.ExtensionConflict, "'"+ext+"' is already a built-in extension")
	}

	var existing int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM custom_extensions WHERE extension = ?`, ext).Scan(&existing)
	if err == nil {
		return CustomExtension{}, clasperr.New(clasperr.ExtensionConflict, "'"+ext+"' is already registered")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return CustomExtension{}, err
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO custom_extensions (extension, category) VALUES (?, ?)`, ext, cat)
	if err != nil {
		return CustomExtension{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return CustomExtension{}, err
	}
	return CustomExtension{ID: id, Extension: ext, Category: cat}, nil
}

func (s *Store) DeleteCustomExtension(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM custom_extensions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return clasperr.New(clasperr.ExtensionNotFound, "")
	}
	return nil
}
