package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-sql-driver/mysql"
)

// MySQL stores documents as JSON rows in a single `documents` table keyed by
// (collection, id). Equality filters are evaluated with JSON_EXTRACT so the
// store stays schemaless; the roster import and form-submission
// collaborators write whatever fields they know about.
type MySQL struct {
	db *sql.DB
}

// NewMySQL wraps an open database handle.
func NewMySQL(db *sql.DB) *MySQL { return &MySQL{db: db} }

// fieldPattern restricts filterable field names to plain identifiers, since
// the field name ends up inside a JSON path expression.
var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// mapErr translates driver-level failures into the store's error taxonomy.
// Privilege errors become ErrPermissionDenied; everything else passes
// through for the caller's retry policy.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1044, 1045, 1142, 1143, 1227:
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
	}
	return err
}

// GetByID returns one document or ErrNotFound.
func (s *MySQL) GetByID(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT doc FROM documents WHERE collection=? AND id=? LIMIT 1",
		collection, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return Document{}, mapErr(err)
	}
	return Document{ID: id, Data: raw}, nil
}

// Query returns all documents of the collection, optionally restricted to
// those whose filter field equals the filter value. Results are ordered by
// id for deterministic output.
func (s *MySQL) Query(ctx context.Context, collection string, filter *Filter) ([]Document, error) {
	q := "SELECT id, doc FROM documents WHERE collection=?"
	args := []any{collection}
	if filter != nil {
		if !fieldPattern.MatchString(filter.Field) {
			return nil, fmt.Errorf("invalid filter field %q", filter.Field)
		}
		q += fmt.Sprintf(" AND JSON_UNQUOTE(JSON_EXTRACT(doc, '$.%s'))=?", filter.Field)
		args = append(args, filter.Value)
	}
	q += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		var raw []byte
		if err := rows.Scan(&d.ID, &raw); err != nil {
			return nil, mapErr(err)
		}
		d.Data = raw
		out = append(out, d)
	}
	return out, mapErr(rows.Err())
}

// BatchWrite applies all operations inside one transaction. The batch is
// rejected up front when it exceeds MaxBatchOps.
func (s *MySQL) BatchWrite(ctx context.Context, collection string, ops []WriteOp) error {
	if len(ops) > MaxBatchOps {
		return fmt.Errorf("%d ops: %w", len(ops), ErrBatchTooLarge)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, op := range ops {
		switch op.Op {
		case OpSet:
			if err := setTx(ctx, tx, collection, op.ID, op.Fields); err != nil {
				return mapErr(err)
			}
		case OpUpdate:
			if err := updateTx(ctx, tx, collection, op.ID, op.Fields); err != nil {
				return mapErr(err)
			}
		case OpDelete:
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM documents WHERE collection=? AND id=?", collection, op.ID); err != nil {
				return mapErr(err)
			}
		default:
			return fmt.Errorf("unknown op %q", op.Op)
		}
	}
	return mapErr(tx.Commit())
}

func setTx(ctx context.Context, tx *sql.Tx, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO documents (collection, id, doc) VALUES (?,?,?) ON DUPLICATE KEY UPDATE doc=VALUES(doc)",
		collection, id, raw)
	return err
}

func updateTx(ctx context.Context, tx *sql.Tx, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	// JSON_MERGE_PATCH replaces only the provided top-level fields.
	_, err = tx.ExecContext(ctx,
		"UPDATE documents SET doc=JSON_MERGE_PATCH(doc, ?) WHERE collection=? AND id=?",
		raw, collection, id)
	return err
}

// Set stores doc under id, replacing any previous version.
func (s *MySQL) Set(ctx context.Context, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, doc) VALUES (?,?,?) ON DUPLICATE KEY UPDATE doc=VALUES(doc)",
		collection, id, raw)
	return mapErr(err)
}

// Update merges the given fields into an existing document.
func (s *MySQL) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE documents SET doc=JSON_MERGE_PATCH(doc, ?) WHERE collection=? AND id=?",
		raw, collection, id)
	return mapErr(err)
}

// Delete removes the document. Deleting a missing document is not an error.
func (s *MySQL) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection=? AND id=?", collection, id)
	return mapErr(err)
}

var _ Store = (*MySQL)(nil)
