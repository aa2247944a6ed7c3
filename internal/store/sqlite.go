package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/solvix/solvix/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements DocumentStore on a single SQLite table holding
// JSON bodies.
type SQLiteStore struct {
	db    *sql.DB
	retry shared.RetryPolicy
}

// Ensure SQLiteStore implements DocumentStore.
var _ DocumentStore = (*SQLiteStore)(nil)

// NewSQLite creates a new SQLite-backed document store.
func NewSQLite(dbPath string, retry shared.RetryPolicy) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode lets readers proceed while a write is in flight.
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, retry: retry}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS documents (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE(collection, id)
	);
	CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection, seq);
	CREATE INDEX IF NOT EXISTS idx_documents_session ON documents(collection, json_extract(body, '$.session_id'));
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Backend returns "sqlite".
func (s *SQLiteStore) Backend() string { return "sqlite" }

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// whereClause renders filter as SQL conditions on top of the collection
// match. Keys are checked against fieldPattern before being spliced into
// the JSON path.
func whereClause(collection string, filter Filter) (string, []any, error) {
	if err := checkFilter(filter); err != nil {
		return "", nil, err
	}

	conds := []string{"collection = ?"}
	args := []any{collection}
	for k, v := range filter {
		switch k {
		case SearchKey:
			search := v.(AnyContains)
			ors := make([]string, 0, len(search.Fields))
			for _, f := range search.Fields {
				ors = append(ors, "instr(lower(json_extract(body, '$."+f+"')), lower(?)) > 0")
				args = append(args, search.Text)
			}
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")
			continue
		case IDField:
			conds = append(conds, "id = ?")
		default:
			conds = append(conds, "json_extract(body, '$."+k+"') = ?")
		}
		args = append(args, v)
	}
	return strings.Join(conds, " AND "), args, nil
}

// Insert stores doc as JSON and returns its new id.
func (s *SQLiteStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	id := NewID()
	now := time.Now().Unix()
	query := `INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

	err = shared.RetryOnConflict(ctx, s.retry, "insert document", func() error {
		_, execErr := s.db.ExecContext(ctx, query, collection, id, string(body), now, now)
		return execErr
	})
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return id, nil
}

// FindOne returns the earliest-inserted document matching filter.
func (s *SQLiteStore) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	where, args, err := whereClause(collection, filter)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, body FROM documents WHERE ` + where + ` ORDER BY seq ASC LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)

	var doc jsonDocument
	var body string
	err = row.Scan(&doc.id, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan document row: %w", err)
	}
	doc.body = []byte(body)
	return doc, nil
}

// FindMany returns the documents matching filter in insertion order.
func (s *SQLiteStore) FindMany(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error) {
	where, args, err := whereClause(collection, filter)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, body FROM documents WHERE ` + where + ` ORDER BY seq ASC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close document rows", "error", closeErr)
		}
	}()

	docs := []Document{}
	for rows.Next() {
		var doc jsonDocument
		var body string
		if err := rows.Scan(&doc.id, &body); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		doc.body = []byte(body)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// UpdateOne replaces the given top-level fields with json_set.
func (s *SQLiteStore) UpdateOne(ctx context.Context, collection string, filter Filter, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}
	if err := checkFields(fields); err != nil {
		return err
	}
	where, whereArgs, err := whereClause(collection, filter)
	if err != nil {
		return err
	}

	setExpr := "body"
	var setArgs []any
	for k, v := range fields {
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode field %s: %w", k, err)
		}
		setExpr = "json_set(" + setExpr + ", '$." + k + "', json(?))"
		setArgs = append(setArgs, string(encoded))
	}

	query := `UPDATE documents SET body = ` + setExpr + `, updated_at = ?
		WHERE seq = (SELECT seq FROM documents WHERE ` + where + ` ORDER BY seq ASC LIMIT 1)`
	args := append(setArgs, time.Now().Unix())
	args = append(args, whereArgs...)

	var rows int64
	err = shared.RetryOnConflict(ctx, s.retry, "update document", func() error {
		result, execErr := s.db.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		rows, execErr = result.RowsAffected()
		return execErr
	})
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Collections lists the distinct collection names in use.
func (s *SQLiteStore) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT collection FROM documents ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close collection rows", "error", closeErr)
		}
	}()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return names, nil
}
