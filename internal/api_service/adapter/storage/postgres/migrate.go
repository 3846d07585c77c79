package postgres

import (
	"database/sql"
	"embed"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratePostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every pending up migration.
func Migrate(dsn string) error {
	const op = "storage.postgres.Migrate"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer db.Close()

	driver, err := migratePostgres.WithInstance(db, &migratePostgres.Config{})
	if err != nil {
		return errors.Wrap(err, op)
	}

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, op)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer m.Close()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Info("No new migrations to apply")
	case err != nil:
		return errors.Wrap(err, op)
	default:
		slog.Info("Database migrations applied")
	}

	return nil
}
