// Package sqlite provides the standalone document and folder store
// backed by a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"scenepack/internal/config"
	"scenepack/internal/document"
	"scenepack/internal/services"
)

// Store implements store.DocumentStore and store.FolderStore on a
// SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "ensure directories", err)
	}
	return OpenPath(cfg.Paths.DatabasePath)
}

// OpenPath opens a database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "create database directory", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrConfiguration, "store", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// GetByID fetches a document, returning nil when it does not exist.
func (s *Store) GetByID(ctx context.Context, kind document.Kind, id string) (*document.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT data_json FROM documents WHERE kind = ? AND id = ?`, string(kind), id)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, services.Wrap(nil, "store", "get_document", "get document", err)
	}
	return document.FromJSON(kind, []byte(raw))
}

// CreateMany inserts documents preserving their supplied IDs. The batch
// is transactional; a duplicate ID fails the whole batch.
func (s *Store) CreateMany(ctx context.Context, kind document.Kind, docs []*document.Document) ([]*document.Document, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, services.Wrap(nil, "store", "create_documents", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	created := make([]*document.Document, 0, len(docs))
	for _, doc := range docs {
		id := doc.ID()
		if id == "" {
			id = uuid.NewString()
			doc = doc.Clone()
			doc.SetID(id)
		}
		raw, err := doc.JSON()
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "store", "create_documents", "encode document "+id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (kind, id, name, folder_id, data_json, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			string(kind), id, doc.Name(), doc.FolderID(), string(raw), now, now,
		); err != nil {
			return nil, services.Wrap(services.ErrValidation, "store", "create_documents",
				fmt.Sprintf("insert %s %s", kind, id), err)
		}
		created = append(created, doc)
	}
	if err := tx.Commit(); err != nil {
		return nil, services.Wrap(nil, "store", "create_documents", "commit tx", err)
	}
	return created, nil
}

// UpdateMany replaces the stored data for each document by ID.
func (s *Store) UpdateMany(ctx context.Context, kind document.Kind, docs []*document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(nil, "store", "update_documents", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, doc := range docs {
		id := doc.ID()
		if id == "" {
			return services.Wrap(services.ErrValidation, "store", "update_documents", "document missing id", nil)
		}
		raw, err := doc.JSON()
		if err != nil {
			return services.Wrap(services.ErrValidation, "store", "update_documents", "encode document "+id, err)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE documents SET name = ?, folder_id = ?, data_json = ?, updated_at = ?
             WHERE kind = ? AND id = ?`,
			doc.Name(), doc.FolderID(), string(raw), now, string(kind), id,
		)
		if err != nil {
			return services.Wrap(nil, "store", "update_documents", fmt.Sprintf("update %s %s", kind, id), err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return services.Wrap(nil, "store", "update_documents", "rows affected", err)
		}
		if affected == 0 {
			return services.Wrap(services.ErrNotFound, "store", "update_documents",
				fmt.Sprintf("%s %s not found", kind, id), nil)
		}
	}
	if err := tx.Commit(); err != nil {
		return services.Wrap(nil, "store", "update_documents", "commit tx", err)
	}
	return nil
}

// Query returns documents of a kind matching the predicate, ordered by
// insertion time. A nil predicate matches everything.
func (s *Store) Query(ctx context.Context, kind document.Kind, match func(*document.Document) bool) ([]*document.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data_json FROM documents WHERE kind = ? ORDER BY created_at, id`, string(kind))
	if err != nil {
		return nil, services.Wrap(nil, "store", "query_documents", "query documents", err)
	}
	defer rows.Close()

	var docs []*document.Document
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, services.Wrap(nil, "store", "query_documents", "scan document", err)
		}
		doc, err := document.FromJSON(kind, []byte(raw))
		if err != nil {
			return nil, err
		}
		if match != nil && !match(doc) {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Create inserts a folder with a generated ID.
func (s *Store) Create(ctx context.Context, name string, kind document.Kind, parentID string) (*document.Folder, error) {
	folder := &document.Folder{
		ID:     uuid.NewString(),
		Name:   name,
		Kind:   kind,
		Parent: parentID,
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO folders (id, name, kind, parent, created_at) VALUES (?, ?, ?, ?, ?)`,
		folder.ID, folder.Name, string(folder.Kind), folder.Parent, now,
	); err != nil {
		return nil, services.Wrap(nil, "store", "create_folder", "insert folder "+name, err)
	}
	return folder, nil
}

// List returns all folders of a kind ordered by creation time.
func (s *Store) List(ctx context.Context, kind document.Kind) ([]*document.Folder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, kind, parent FROM folders WHERE kind = ? ORDER BY created_at, id`, string(kind))
	if err != nil {
		return nil, services.Wrap(nil, "store", "list_folders", "query folders", err)
	}
	defer rows.Close()

	var folders []*document.Folder
	for rows.Next() {
		var (
			id, name, kindStr, parent string
		)
		if err := rows.Scan(&id, &name, &kindStr, &parent); err != nil {
			return nil, services.Wrap(nil, "store", "list_folders", "scan folder", err)
		}
		folders = append(folders, &document.Folder{
			ID:     id,
			Name:   name,
			Kind:   document.Kind(kindStr),
			Parent: parent,
		})
	}
	return folders, rows.Err()
}

// Counts returns the number of stored documents grouped by kind.
func (s *Store) Counts(ctx context.Context) (map[document.Kind]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(1) FROM documents GROUP BY kind`)
	if err != nil {
		return nil, services.Wrap(nil, "store", "counts", "count documents", err)
	}
	defer rows.Close()

	counts := make(map[document.Kind]int)
	for rows.Next() {
		var kindStr string
		var count int
		if err := rows.Scan(&kindStr, &count); err != nil {
			return nil, services.Wrap(nil, "store", "counts", "scan count", err)
		}
		counts[document.Kind(kindStr)] = count
	}
	return counts, rows.Err()
}
