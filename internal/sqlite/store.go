// Package sqlite implements the content store on a local SQLite database for
// self-hosted deployments. Uniqueness of sourceUrl is enforced by the schema,
// so a duplicate write fails loudly even if the pre-write dedup missed it.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aiobituaries/discovery/internal/domain"
)

// Store implements domain.ContentStore using SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the database at path and initializes
// the schema. The caller should call Close when done.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS obituaries (
		id TEXT PRIMARY KEY,
		claim TEXT NOT NULL,
		source TEXT NOT NULL,
		source_url TEXT NOT NULL UNIQUE,
		date TEXT NOT NULL,
		categories TEXT NOT NULL DEFAULT '[]',
		context TEXT NOT NULL DEFAULT '{}',
		slug TEXT NOT NULL,
		discovered_at DATETIME NOT NULL,
		confidence REAL NOT NULL,
		notability_reason TEXT NOT NULL DEFAULT '',
		source_type TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_obituaries_slug ON obituaries(slug);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ExistingSourceURLs reports which of the given URLs already have a row.
func (s *Store) ExistingSourceURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(urls))
	if len(urls) == 0 {
		return existing, nil
	}

	placeholders := strings.Repeat("?,", len(urls))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(urls))
	for i, u := range urls {
		args[i] = u
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source_url FROM obituaries WHERE source_url IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query existing source urls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan source url: %w", err)
		}
		existing[u] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source urls: %w", err)
	}
	return existing, nil
}

// CreateDraft inserts one draft and returns its generated document ID.
func (s *Store) CreateDraft(ctx context.Context, draft *domain.ObituaryDraft) (string, error) {
	if draft.Slug == "" {
		return "", fmt.Errorf("draft slug must not be empty")
	}

	categories, err := json.Marshal(draft.Categories)
	if err != nil {
		return "", fmt.Errorf("marshal categories: %w", err)
	}
	contextJSON, err := json.Marshal(draft.Context)
	if err != nil {
		return "", fmt.Errorf("marshal context: %w", err)
	}

	id := "obit-" + uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO obituaries (
			id, claim, source, source_url, date, categories, context, slug,
			discovered_at, confidence, notability_reason, source_type, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		draft.Claim,
		draft.Source,
		draft.SourceURL,
		draft.Date,
		string(categories),
		string(contextJSON),
		draft.Slug,
		draft.Discovery.DiscoveredAt.UTC(),
		draft.Discovery.Confidence,
		draft.Discovery.NotabilityReason,
		string(draft.Discovery.SourceType),
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert obituary: %w", err)
	}
	return id, nil
}
