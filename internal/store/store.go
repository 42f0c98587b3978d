package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/influsim/influsim/internal/results"
)

// ErrNotFound is returned when a requested batch does not exist.
var ErrNotFound = errors.New("store: batch not found")

// BatchMeta describes a stored batch: the configuration that produced it
// plus bookkeeping fields filled in on save.
type BatchMeta struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Nodes        int       `json:"nodes"`
	AvgDegree    float64   `json:"avg_degree"`
	Threshold    float64   `json:"threshold"`
	Thresholds   []float64 `json:"thresholds,omitempty"`
	Realizations int       `json:"realizations"`
	Seed         int64     `json:"seed"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// ResultStore persists batches and their realization rows in SQLite.
type ResultStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// Open opens (or creates) the results database at path.
// Parent directories are created as needed.
func Open(path string) (*ResultStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store: database path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &ResultStore{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *ResultStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveBatch stores a batch and all its realization rows in one transaction.
// A fresh UUID is assigned when meta.ID is empty; CreatedAt and Realizations
// are filled in from the clock and the table. Returns the batch ID.
func (s *ResultStore) SaveBatch(ctx context.Context, meta BatchMeta, table *results.Table) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if table == nil || len(table.Rows) == 0 {
		return "", fmt.Errorf("store: batch has no rows")
	}
	if meta.Nodes != table.Nodes {
		return "", fmt.Errorf("store: meta nodes %d does not match table nodes %d", meta.Nodes, table.Nodes)
	}

	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	meta.Realizations = len(table.Rows)

	var thresholdsJSON []byte
	if len(meta.Thresholds) > 0 {
		var err error
		thresholdsJSON, err = json.Marshal(meta.Thresholds)
		if err != nil {
			return "", fmt.Errorf("failed to marshal thresholds: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO batches (id, name, nodes, avg_degree, threshold, thresholds,
			realizations, seed, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, meta.ID, meta.Name, meta.Nodes, meta.AvgDegree, meta.Threshold, nullBytes(thresholdsJSON),
		meta.Realizations, meta.Seed, meta.DurationMS, meta.CreatedAt.Format(time.RFC3339)); err != nil {
		return "", fmt.Errorf("failed to insert batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO realizations (batch_id, idx, random_activation, random_rounds,
			influential_activation, influential_rounds)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare realization insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range table.Rows {
		if _, err := stmt.ExecContext(ctx, meta.ID, i,
			row.RandomActivation, row.RandomRounds,
			row.InfluentialActivation, row.InfluentialRounds); err != nil {
			return "", fmt.Errorf("failed to insert realization %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit batch: %w", err)
	}

	return meta.ID, nil
}

// GetBatch retrieves a batch and its realization rows by ID.
func (s *ResultStore) GetBatch(ctx context.Context, id string) (BatchMeta, *results.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, err := scanBatch(s.db.QueryRowContext(ctx, `
		SELECT id, name, nodes, avg_degree, threshold, thresholds,
			realizations, seed, duration_ms, created_at
		FROM batches WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return BatchMeta{}, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return BatchMeta{}, nil, fmt.Errorf("failed to query batch: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT random_activation, random_rounds, influential_activation, influential_rounds
		FROM realizations WHERE batch_id = ? ORDER BY idx
	`, id)
	if err != nil {
		return BatchMeta{}, nil, fmt.Errorf("failed to query realizations: %w", err)
	}
	defer rows.Close()

	table := &results.Table{Nodes: meta.Nodes}
	for rows.Next() {
		var row results.Row
		if err := rows.Scan(&row.RandomActivation, &row.RandomRounds,
			&row.InfluentialActivation, &row.InfluentialRounds); err != nil {
			return BatchMeta{}, nil, fmt.Errorf("failed to scan realization: %w", err)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return BatchMeta{}, nil, fmt.Errorf("failed to read realizations: %w", err)
	}

	return meta, table, nil
}

// ListBatches returns metadata for all stored batches, newest first.
func (s *ResultStore) ListBatches(ctx context.Context) ([]BatchMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, nodes, avg_degree, threshold, thresholds,
			realizations, seed, duration_ms, created_at
		FROM batches ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []BatchMeta
	for rows.Next() {
		meta, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batches: %w", err)
	}

	return batches, nil
}

// LatestBatch returns the most recently created batch.
func (s *ResultStore) LatestBatch(ctx context.Context) (BatchMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, err := scanBatch(s.db.QueryRowContext(ctx, `
		SELECT id, name, nodes, avg_degree, threshold, thresholds,
			realizations, seed, duration_ms, created_at
		FROM batches ORDER BY created_at DESC, id LIMIT 1
	`))
	if errors.Is(err, sql.ErrNoRows) {
		return BatchMeta{}, ErrNotFound
	}
	if err != nil {
		return BatchMeta{}, fmt.Errorf("failed to query latest batch: %w", err)
	}

	return meta, nil
}

// ResolveID expands a batch ID prefix to the full ID. Batch IDs are UUIDs,
// so the 8-character form shown in listings is normally unique; an ambiguous
// prefix is an error rather than a guess.
func (s *ResultStore) ResolveID(ctx context.Context, prefix string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if prefix == "" {
		return "", fmt.Errorf("%w: empty batch ID", ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM batches WHERE id LIKE ? || '%' ORDER BY id`, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to resolve batch ID: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan batch ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to resolve batch ID: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("ambiguous batch ID %q matches %d batches", prefix, len(ids))
	}
}

// DeleteBatch removes a batch and its realization rows.
func (s *ResultStore) DeleteBatch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete batch: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanBatch.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(r rowScanner) (BatchMeta, error) {
	var (
		meta           BatchMeta
		thresholdsJSON sql.NullString
		createdAt      string
	)

	err := r.Scan(&meta.ID, &meta.Name, &meta.Nodes, &meta.AvgDegree, &meta.Threshold,
		&thresholdsJSON, &meta.Realizations, &meta.Seed, &meta.DurationMS, &createdAt)
	if err != nil {
		return BatchMeta{}, err
	}

	if thresholdsJSON.Valid {
		if err := json.Unmarshal([]byte(thresholdsJSON.String), &meta.Thresholds); err != nil {
			return BatchMeta{}, fmt.Errorf("failed to unmarshal thresholds: %w", err)
		}
	}

	meta.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return BatchMeta{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return meta, nil
}

func nullBytes(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
