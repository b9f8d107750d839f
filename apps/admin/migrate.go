package main

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	appfs "github.com/edupulse/edupulse/fs"
)

var (
	gooseRunFunc = runMigration // mockable

	errNoSQLDatabase = errors.New("migrations only apply to the postgres engine")
)

type migration struct {
	command string
	version int64
}

func parseMigration(args []string) (migration, error) {
	m := migration{command: args[0]}
	switch m.command {
	case "up", "up-by-one", "down", "redo": // pass
	case "up-to", "down-to":
		if len(args) < 2 {
			return m, fmt.Errorf("%s must be of form: migrate %s VERSION", m.command, m.command)
		}
		v, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return m, fmt.Errorf("version must be a number (got '%s')", args[1])
		}
		m.version = v
	default:
		return m, fmt.Errorf("%q: no such command", m.command)
	}
	return m, nil
}

func runMigration(db *sql.DB, m migration) error {
	switch m.command {
	case "up":
		return goose.Up(db, appfs.FS, appfs.MigrationsDir)
	case "up-by-one":
		return goose.UpByOne(db, appfs.FS, appfs.MigrationsDir)
	case "up-to":
		return goose.UpTo(db, appfs.FS, appfs.MigrationsDir, m.version)
	case "down":
		return goose.Down(db, appfs.FS, appfs.MigrationsDir)
	case "down-to":
		return goose.DownTo(db, appfs.FS, appfs.MigrationsDir, m.version)
	case "redo":
		return goose.Redo(db, appfs.FS, appfs.MigrationsDir)
	}
	return fmt.Errorf("%q: no such command", m.command)
}

func (cli *commandLine) migrate(args []string) error {
	m, err := parseMigration(args)
	if err != nil {
		return err
	}
	if cli.db == nil {
		return errNoSQLDatabase
	}
	return errors.Wrap(gooseRunFunc(cli.db, m), "migrating database")
}
