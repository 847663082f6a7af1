package postgres

import (
	stderrors "errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // file source

	"github.com/openhaven/matchgrid/pkg/errors"
)

// sourceURL turns a bare directory path into the file:// source URL
// golang-migrate expects.  Paths that already carry a scheme pass through.
func sourceURL(migrationsPath string) string {
	if strings.Contains(migrationsPath, "://") {
		return migrationsPath
	}
	return "file://" + migrationsPath
}

// RunMigrations applies every pending migration from migrationsPath
// (a source URL such as "file://migrations", or a bare directory path)
// against dbURL.  An already current schema is not an error.
func RunMigrations(dbURL, migrationsPath string) error {
	m, err := migrate.New(sourceURL(migrationsPath), dbURL)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "initializing migrator")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, errors.CodeDatabaseError, "applying migrations")
	}
	return nil
}

// RollbackMigrations undoes the most recent `steps` migrations.
func RollbackMigrations(dbURL, migrationsPath string, steps int) error {
	if steps <= 0 {
		return errors.Newf(errors.CodeInvalidParam, "steps must be positive, got %d", steps)
	}

	m, err := migrate.New(sourceURL(migrationsPath), dbURL)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "initializing migrator")
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, errors.CodeDatabaseError, "rolling back migrations")
	}
	return nil
}

// MigrationVersion reports the current schema version and whether the last
// migration left the schema dirty.
func MigrationVersion(dbURL, migrationsPath string) (version uint, dirty bool, err error) {
	m, err := migrate.New(sourceURL(migrationsPath), dbURL)
	if err != nil {
		return 0, false, errors.Wrap(err, errors.CodeDatabaseError, "initializing migrator")
	}
	defer m.Close()

	version, dirty, err = m.Version()
	if stderrors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, errors.CodeDatabaseError, "reading migration version")
	}
	return version, dirty, nil
}
