package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Field names are interpolated into ORDER BY clauses, so they must be plain
// identifiers. Filter values always travel as bind parameters.
var fieldNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type postgresStore struct {
	db *sql.DB
}

// NewPostgres creates a Store backed by the documents table
func NewPostgres(db *sql.DB) Store {
	return &postgresStore{db: db}
}

// Get retrieves a single document using parameterized queries
func (s *postgresStore) Get(ctx context.Context, collection, id string) (Record, error) {
	query := `
		SELECT data
		FROM documents
		WHERE collection = $1 AND id = $2
	`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, collection, id).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	rec := Record{}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return rec, nil
}

// Set writes a document under a known id, merging or replacing on conflict
func (s *postgresStore) Set(ctx context.Context, collection, id string, data Record, merge bool) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	assign := "EXCLUDED.data"
	if merge {
		assign = "documents.data || EXCLUDED.data"
	}

	query := fmt.Sprintf(`
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = %s
	`, assign)

	if _, err := s.db.ExecContext(ctx, query, collection, id, raw); err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}

	return nil
}

// Update applies a partial update to an existing document
func (s *postgresStore) Update(ctx context.Context, collection, id string, partial Record) error {
	raw, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	query := `
		UPDATE documents
		SET data = data || $3
		WHERE collection = $1 AND id = $2
	`

	result, err := s.db.ExecContext(ctx, query, collection, id, raw)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a document
func (s *postgresStore) Delete(ctx context.Context, collection, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`

	result, err := s.db.ExecContext(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Add stores a document under a fresh id and returns the id
func (s *postgresStore) Add(ctx context.Context, collection string, data Record) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}

	query := `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, gen_random_uuid()::text, $2)
		RETURNING id
	`

	var id string
	if err := s.db.QueryRowContext(ctx, query, collection, raw).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to add document: %w", err)
	}

	return id, nil
}

// QueryCollection returns the documents matching q. Equality filters are
// evaluated with jsonb containment so values stay fully parameterized.
func (s *postgresStore) QueryCollection(ctx context.Context, collection string, q Query) ([]Doc, error) {
	var sb strings.Builder
	sb.WriteString("SELECT id, data FROM documents WHERE collection = $1")

	args := []any{collection}
	argIndex := 2

	if len(q.Where) > 0 {
		match := Record{}
		for _, f := range q.Where {
			match[f.Field] = f.Value
		}

		raw, err := json.Marshal(match)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal query filter: %w", err)
		}

		sb.WriteString(fmt.Sprintf(" AND data @> $%d", argIndex))
		args = append(args, raw)
		argIndex++
	}

	if q.OrderBy != nil {
		if !fieldNamePattern.MatchString(q.OrderBy.Field) {
			return nil, fmt.Errorf("invalid order field %q", q.OrderBy.Field)
		}

		direction := "ASC"
		if q.OrderBy.Desc {
			direction = "DESC"
		}

		sb.WriteString(fmt.Sprintf(" ORDER BY data->>'%s' %s", q.OrderBy.Field, direction))
	} else {
		sb.WriteString(" ORDER BY created_at ASC")
	}

	if q.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argIndex))
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer rows.Close()

	docs := []Doc{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		rec := Record{}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}

		docs = append(docs, Doc{ID: id, Data: rec})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// Count returns the number of documents in a collection
func (s *postgresStore) Count(ctx context.Context, collection string) (int, error) {
	query := `SELECT COUNT(*) FROM documents WHERE collection = $1`

	var total int
	if err := s.db.QueryRowContext(ctx, query, collection).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return total, nil
}
