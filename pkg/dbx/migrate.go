// Package dbx owns the relational schema. Migrations are embedded in the
// binary and applied at startup, so a deployed image never depends on
// external migration files.
package dbx

import (
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/dpang/auth-server/pkg/errx"
	"github.com/dpang/auth-server/pkg/logx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies every pending migration against the database at
// databaseURL. An already up-to-date schema is not an error.
func RunMigrations(databaseURL string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errx.Wrap(err, "failed to open embedded migrations", errx.TypeInternal)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return errx.Wrap(err, "failed to create migrator", errx.TypeInternal)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errx.Wrap(err, "failed to apply migrations", errx.TypeInternal)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errx.Wrap(err, "failed to read schema version", errx.TypeInternal)
	}
	logx.WithFields(logx.Fields{"version": version, "dirty": dirty}).
		Info("database schema up to date")

	return nil
}
