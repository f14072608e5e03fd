package cache

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"

	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ interfaces.CacheStore = (*SQLiteStore)(nil)

// SQLiteStore keeps one row per repository in a local SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies migrations
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)",
		path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open cache database", goerr.V("path", path))
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping cache database", goerr.V("path", path))
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations applies the embedded migrations; already applied ones are skipped
func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return goerr.Wrap(err, "failed to create migration source")
	}

	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return goerr.Wrap(err, "failed to create migration db driver")
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return goerr.Wrap(err, "failed to create migrator")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return goerr.Wrap(err, "failed to run migrations")
	}

	return nil
}

// Load returns every stored row
func (x *SQLiteStore) Load(ctx context.Context) (map[types.RepositoryID]string, error) {
	rows, err := x.db.QueryContext(ctx, `SELECT repository, tag FROM release_versions`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query release versions", goerr.T(types.ErrTagPersistence))
	}
	defer rows.Close()

	snapshot := make(map[types.RepositoryID]string)
	for rows.Next() {
		var repo, tag string
		if err := rows.Scan(&repo, &tag); err != nil {
			return nil, goerr.Wrap(err, "failed to scan release version", goerr.T(types.ErrTagPersistence))
		}
		if tag != "" {
			snapshot[types.RepositoryID(repo)] = tag
		}
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate release versions", goerr.T(types.ErrTagPersistence))
	}

	return snapshot, nil
}

// Save replaces all rows with snapshot in one transaction
func (x *SQLiteStore) Save(ctx context.Context, snapshot map[types.RepositoryID]string) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction", goerr.T(types.ErrTagPersistence))
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM release_versions`); err != nil {
		return goerr.Wrap(err, "failed to clear release versions", goerr.T(types.ErrTagPersistence))
	}

	const query = `
		INSERT INTO release_versions (repository, tag, updated_at)
		VALUES (?, ?, ?)
	`
	now := time.Now().UTC().Format(time.RFC3339)
	for repo, tag := range snapshot {
		if _, err := tx.ExecContext(ctx, query, string(repo), tag, now); err != nil {
			return goerr.Wrap(err, "failed to insert release version",
				goerr.V("repository", repo),
				goerr.T(types.ErrTagPersistence),
			)
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit release versions", goerr.T(types.ErrTagPersistence))
	}
	return nil
}

// Close closes the database
func (x *SQLiteStore) Close() error {
	return x.db.Close()
}
