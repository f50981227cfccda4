// Package sqlite provides a SQLite implementation of the agent store,
// used for local development deployments and as an in-memory database in
// tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/estia-cy/estia/internal/storage"
	"github.com/estia-cy/estia/pkg/types"
)

// Schema is the base agents schema, applied idempotently on open.
const Schema = `
CREATE TABLE IF NOT EXISTS agents (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	location     TEXT NOT NULL DEFAULT '',
	type         TEXT NOT NULL DEFAULT 'agent',
	listings     INTEGER NOT NULL DEFAULT 0,
	phone        TEXT NOT NULL DEFAULT '',
	website      TEXT NOT NULL DEFAULT '',
	verified     INTEGER NOT NULL DEFAULT 0,
	rating       REAL,
	review_count INTEGER,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_agents_location ON agents(location);
CREATE INDEX IF NOT EXISTS idx_agents_listings ON agents(listings DESC);
`

// AgentStore implements storage.AgentStore using SQLite.
type AgentStore struct {
	db *sql.DB
}

// NewAgentStore creates a new SQLite agent store. The dsn is a file path
// or ":memory:" for tests.
func NewAgentStore(dsn string) (*AgentStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// Single writer; the directory only reads after the initial load.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to apply schema: %w", err)
	}

	return &AgentStore{db: db}, nil
}

// GetDB returns the underlying database connection.
func (s *AgentStore) GetDB() *sql.DB {
	return s.db
}

// Query retrieves raw agent records matching the options.
func (s *AgentStore) Query(ctx context.Context, opts storage.QueryOptions) ([]types.RawAgent, error) {
	opts.Normalize()

	var (
		where []string
		args  []interface{}
	)

	if opts.City != "" {
		where = append(where, "location = ?")
		args = append(args, opts.City)
	}
	if opts.NameSearch != "" {
		where = append(where, "LOWER(name) LIKE '%' || LOWER(?) || '%'")
		args = append(args, opts.NameSearch)
	}

	query := "SELECT id, name, location, type, listings, phone, website, verified, rating, review_count FROM agents"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if opts.OrderByListings {
		query += " ORDER BY listings DESC, name ASC"
	} else {
		query += " ORDER BY name ASC"
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query failed: %w", err)
	}
	defer rows.Close()

	var agents []types.RawAgent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan failed: %w", err)
		}
		agents = append(agents, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: row iteration failed: %w", err)
	}

	return agents, nil
}

// GetByID retrieves a single record by its row identifier.
func (s *AgentStore) GetByID(ctx context.Context, id string) (*types.RawAgent, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, location, type, listings, phone, website, verified, rating, review_count FROM agents WHERE id = ?", id)

	agent, err := scanAgent(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get failed: %w", err)
	}
	return &agent, nil
}

// Insert adds records with upsert semantics, assigning IDs where missing.
func (s *AgentStore) Insert(ctx context.Context, agents []types.RawAgent) error {
	if len(agents) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin failed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO agents (id, name, location, type, listings, phone, website, verified, rating, review_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			type = excluded.type,
			listings = excluded.listings,
			phone = excluded.phone,
			website = excluded.website,
			verified = excluded.verified,
			rating = excluded.rating,
			review_count = excluded.review_count
	`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare failed: %w", err)
	}
	defer stmt.Close()

	for _, agent := range agents {
		if err := agent.Validate(); err != nil {
			return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
		id := agent.ID
		if id == "" {
			id = storage.NewAgentID()
		}
		if _, err := stmt.ExecContext(ctx, id, agent.Name, agent.Location,
			string(agent.Type.Normalize()), agent.Listings, agent.Phone,
			agent.Website, agent.Verified, agent.Rating, agent.ReviewCount); err != nil {
			return fmt.Errorf("sqlite: insert %q failed: %w", agent.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit failed: %w", err)
	}
	return nil
}

// Count returns the total number of stored records.
func (s *AgentStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM agents").Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count failed: %w", err)
	}
	return n, nil
}

// Close releases any resources held by the store.
func (s *AgentStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanAgent.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanAgent reads one agents row, converting nullable rating/review
// columns into the optional pointers on RawAgent.
func scanAgent(row scanner) (types.RawAgent, error) {
	var (
		agent     types.RawAgent
		agentType string
		rating    sql.NullFloat64
		reviews   sql.NullInt64
	)

	err := row.Scan(&agent.ID, &agent.Name, &agent.Location, &agentType,
		&agent.Listings, &agent.Phone, &agent.Website, &agent.Verified,
		&rating, &reviews)
	if err != nil {
		return types.RawAgent{}, err
	}

	agent.Type = types.AgentType(agentType)
	if rating.Valid {
		v := rating.Float64
		agent.Rating = &v
	}
	if reviews.Valid {
		v := int(reviews.Int64)
		agent.ReviewCount = &v
	}
	return agent, nil
}
