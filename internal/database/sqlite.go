package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"photosort/internal/database/migrations"
	"photosort/internal/model"
	"photosort/internal/photosort"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SQLiteDatabase implements photosort.Database on top of SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens the catalog at path (or ":memory:") and brings the
// schema up to date.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating catalog: %w", err)
	}

	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing connection. The caller is
// responsible for configuring it and applying migrations.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db}
}

// OpenConnection opens a SQLite connection with foreign keys enabled.
//
// The pool is limited to one connection: every ":memory:" connection is a
// separate database, and SQLite serializes writers anyway. Callers must not
// hold a *sql.Rows open while issuing another statement.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type sqlizer interface {
	ToSql() (string, []any, error)
}

func exec(r execer, b sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return r.Exec(query, args...)
}

func queryRow(r execer, b sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return r.QueryRow(query, args...), nil
}

// queryAll runs b and calls scan for every row. The rows are closed before
// queryAll returns.
func queryAll(r execer, b sqlizer, scan func(*sql.Rows) error) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	rows, err := r.Query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// withTx runs fn inside a transaction and commits when fn succeeds.
func (s *SQLiteDatabase) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Operations

func (s *SQLiteDatabase) CreateOperation(operation, parameters string, startedAt time.Time) (*model.Operation, error) {
	res, err := exec(s.db, psql.Insert("operations").
		Columns("operation", "parameters", "started_at", "status").
		Values(operation, parameters, startedAt, "running"))
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading operation id: %w", err)
	}
	return &model.Operation{
		ID:         id,
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  startedAt,
		Status:     "running",
	}, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string, finishedAt time.Time) error {
	_, err := exec(s.db, psql.Update("operations").
		Set("finished_at", finishedAt).
		Set("status", status).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*model.Operation, error) {
	var ops []*model.Operation
	err := queryAll(s.db, psql.Select("id", "operation", "parameters", "started_at", "finished_at", "status").
		From("operations").
		OrderBy("id DESC").
		Limit(uint64(limit)),
		func(rows *sql.Rows) error {
			op := &model.Operation{}
			if err := rows.Scan(&op.ID, &op.Operation, &op.Parameters, &op.StartedAt, &op.FinishedAt, &op.Status); err != nil {
				return err
			}
			ops = append(ops, op)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// BackupTo writes a consistent snapshot of the catalog to destPath using
// VACUUM INTO. The destination must not already exist.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// CheckMigrations verifies the schema is at the latest version.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteDatabase) Path() string {
	return s.path
}

func (s *SQLiteDatabase) Close() error {
	return s.db.Close()
}

// notFound maps sql.ErrNoRows to a nil error so lookups can return (nil, nil).
func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

var _ photosort.Database = (*SQLiteDatabase)(nil)
