package data

import (
	"database/sql"
	"errors"

	"assetguard/internal/conf"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/file"
)

const defaultMigrationsDir = "internal/data/migrations"

func RunMigrate(c *conf.Data, db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	dir := c.Database.MigrationsDir
	if dir == "" {
		dir = defaultMigrationsDir
	}
	src, err := (&file.File{}).Open(dir)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("file", src, c.Database.Driver, driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
