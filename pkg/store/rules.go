package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/KimHands/clasp/pkg/clasperr"
)

var validRuleTypes = map[RuleType]bool{
	RuleTypeExtension: true,
	RuleTypeDate:      true,
	RuleTypeContent:   true,
}

// ListRules returns every rule ordered by priority ascending, the order
// the resolver and Tier-1 both depend on.
func (s *Store) ListRules(ctx context.Context) ([]Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, priority, type, value, folder_name, parent_id FROM rules ORDER BY priority ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		var r Rule
		var parentID sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Priority, &r.Type, &r.Value, &r.FolderName, &parentID); err != nil {
			return nil, err
		}
		r.ParentID = parentID.Int64
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateRule validates the type, rejects (type,value) duplicates, and
// requires the parent (if any) to already exist, matching routers/rules.py.
func (s *Store) CreateRule(ctx context.Context, r Rule) (Rule, error) {
	if !validRuleTypes[r.Type] {
		return Rule{}, clasperr.New(clasperr.InvalidType, "unsupported rule type: "+string(r.Type))
	}

	var existing int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM rules WHERE type = ? AND value = ?`, r.Type, r.Value).Scan(&existing)
	if err == nil {
		return Rule{}, clasperr.New(clasperr.RuleConflict, "a rule with the same type and value already exists")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Rule{}, err
	}

	var parentArg any
	if r.ParentID != 0 {
		var parentExists int64
		if err := s.db.QueryRowContext(ctx, `SELECT id FROM rules WHERE id = ?`, r.ParentID).Scan(&parentExists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return Rule{}, clasperr.New(clasperr.RuleNotFound, "parent rule does not exist")
			}
			return Rule{}, err
		}
		parentArg = r.ParentID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (priority, type, value, folder_name, parent_id) VALUES (?, ?, ?, ?, ?)`,
		r.Priority, r.Type, r.Value, r.FolderName, parentArg)
	if err != nil {
		return Rule{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Rule{}, err
	}
	r.ID = id
	return r, nil
}

// RulePatch carries only the fields to update; a nil ParentID leaves the
// parent unchanged, and ClearParent moves the rule to root.
type RulePatch struct {
	Priority   *int
	FolderName *string
	ParentID   *int64
	ClearParent bool
}

// UpdateRule applies a patch, rejecting self-parenting and any indirect
// cycle (walking the ancestor chain), matching routers/rules.py's
// PATCH /rules/{id} semantics exactly.
func (s *Store) UpdateRule(ctx context.Context, ruleID int64, patch RulePatch) (Rule, error) {
	var r Rule
	var parentID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT id, priority, type, value, folder_name, parent_id FROM rules WHERE id = ?`, ruleID).
		Scan(&r.ID, &r.Priority, &r.Type, &r.Value, &r.FolderName, &parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return Rule{}, clasperr.New(clasperr.RuleNotFound, "")
	}
	if err != nil {
		return Rule{}, err
	}
	r.ParentID = parentID.Int64

	if patch.Priority != nil {
		r.Priority = *patch.Priority
	}
	if patch.FolderName != nil {
		r.FolderName = *patch.FolderName
	}

	var parentArg any
	switch {
	case patch.ClearParent:
		r.ParentID = 0
	case patch.ParentID != nil:
		newParent := *patch.ParentID
		if newParent == ruleID {
			return Rule{}, clasperr.New(clasperr.InvalidType, "a rule cannot be its own parent")
		}
		if err := s.assertNoCycle(ctx, ruleID, newParent); err != nil {
			return Rule{}, err
		}
		r.ParentID = newParent
	}
	if r.ParentID != 0 {
		parentArg = r.ParentID
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE rules SET priority = ?, folder_name = ?, parent_id = ? WHERE id = ?`,
		r.Priority, r.FolderName, parentArg, ruleID)
	return r, err
}

// assertNoCycle walks newParent's ancestor chain and fails if ruleID
// would be reachable from it (an indirect cycle).
func (s *Store) assertNoCycle(ctx context.Context, ruleID, newParent int64) error {
	var exists int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM rules WHERE id = ?`, newParent).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return clasperr.New(clasperr.RuleNotFound, "parent rule does not exist")
		}
		return err
	}

	visited := map[int64]bool{ruleID: true}
	current := newParent
	for current != 0 {
		if visited[current] {
			return clasperr.New(clasperr.InvalidType, "this change would introduce a cycle")
		}
		visited[current] = true

		var parentID sql.NullInt64
		if err := s.db.QueryRowContext(ctx, `SELECT parent_id FROM rules WHERE id = ?`, current).Scan(&parentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				break
			}
			return err
		}
		current = parentID.Int64
	}
	return nil
}

// DeleteRule removes a rule and re-parents its children to its own
// parent, matching routers/rules.py's delete_rule.
func (s *Store) DeleteRule(ctx context.Context, ruleID int64) error {
	var parentID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT parent_id FROM rules WHERE id = ?`, ruleID).Scan(&parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return clasperr.New(clasperr.RuleNotFound, "")
	}
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var parentArg any
	if parentID.Valid {
		parentArg = parentID.Int64
	}
	if _, err := tx.ExecContext(ctx, `UPDATE rules SET parent_id = ? WHERE parent_id = ?`, parentArg, ruleID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, ruleID); err != nil {
		return err
	}
	return tx.Commit()
}
