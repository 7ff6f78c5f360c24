package policy

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore implements Store backed by PostgreSQL. The thresholds
// live in a JSONB definition column; identity and timestamps are plain
// columns so they can be queried without unpacking the document.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed policy store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get retrieves a policy by ID.
func (s *PostgresStore) Get(id string) (*Policy, error) {
	var (
		name       string
		definition []byte
		createdAt  time.Time
		updatedAt  time.Time
	)
	err := s.db.QueryRow(`
		SELECT name, definition, created_at, updated_at
		FROM policies
		WHERE id = $1
	`, id).Scan(&name, &definition, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("policy %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	return decodePolicy(id, name, definition, createdAt, updatedAt)
}

// List returns all policies ordered by ID.
func (s *PostgresStore) List() ([]*Policy, error) {
	rows, err := s.db.Query(`
		SELECT id, name, definition, created_at, updated_at
		FROM policies
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer rows.Close()

	var list []*Policy
	for rows.Next() {
		var (
			id         string
			name       string
			definition []byte
			createdAt  time.Time
			updatedAt  time.Time
		)
		if err := rows.Scan(&id, &name, &definition, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		p, err := decodePolicy(id, name, definition, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating policies: %w", err)
	}

	return list, nil
}

// Save inserts or replaces a policy.
func (s *PostgresStore) Save(p *Policy) error {
	if p.ID == "" {
		return fmt.Errorf("policy ID is required")
	}

	definition, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode policy: %w", err)
	}

	p.UpdatedAt = time.Now()
	err = s.db.QueryRow(`
		INSERT INTO policies (id, name, definition, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, definition = EXCLUDED.definition, updated_at = NOW()
		RETURNING created_at
	`, p.ID, p.Name, definition).Scan(&p.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}

	return nil
}

// Delete removes a policy.
func (s *PostgresStore) Delete(id string) error {
	result, err := s.db.Exec(`DELETE FROM policies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("policy %s not found", id)
	}

	return nil
}

func decodePolicy(id, name string, definition []byte, createdAt, updatedAt time.Time) (*Policy, error) {
	var p Policy
	if err := json.Unmarshal(definition, &p); err != nil {
		return nil, fmt.Errorf("failed to decode policy %s: %w", id, err)
	}

	// id, name, and timestamps come from the columns, not the document
	p.ID = id
	p.Name = name
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	return &p, nil
}
