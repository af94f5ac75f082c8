package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db      *sql.DB
	getStmt *sql.Stmt
	putStmt *sql.Stmt
	delStmt *sql.Stmt
}

func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db path: %w", err)
	}

	// DSN notes:
	// - _pragma=busy_timeout sets a lock wait
	// - _pragma=journal_mode(WAL) enables the write-ahead log
	// - _pragma=synchronous(NORMAL) is the recommended pairing with WAL
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", filepath.Clean(dbPath))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}

	s.getStmt, err = db.Prepare(`SELECT blob FROM saves WHERE key = ?`)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.putStmt, err = db.Prepare(`
		INSERT INTO saves (key, blob, updated_at)
		VALUES (?,?,?)
		ON CONFLICT(key) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at
	`)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.delStmt, err = db.Prepare(`DELETE FROM saves WHERE key = ?`)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s.getStmt != nil {
		_ = s.getStmt.Close()
	}
	if s.putStmt != nil {
		_ = s.putStmt.Close()
	}
	if s.delStmt != nil {
		_ = s.delStmt.Close()
	}

	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS saves (
			key         TEXT    PRIMARY KEY,
			blob        BLOB    NOT NULL,
			updated_at  INTEGER NOT NULL
		);
	`)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialized")
	}

	var blob []byte
	err := s.getStmt.QueryRowContext(ctx, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return blob, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, blob []byte) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}

	if _, err := s.putStmt.ExecContext(ctx, key, blob, time.Now().Unix()); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}

	if _, err := s.delStmt.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
