package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/marshalhq/event-coordination-backend/internal/infrastructure/config"
)

const migrationsDir = "file://migrations"

func main() {
	var (
		action = flag.String("action", "up", "Migration action: up, down, version, force")
		steps  = flag.Int("steps", 0, "Number of migrations to run (0 = all)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	m, err := migrate.New(migrationsDir, cfg.Database.URL)
	if err != nil {
		slog.Error("failed to open migrator", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	switch *action {
	case "up":
		err = runUp(m, *steps)
	case "down":
		err = runDown(m, *steps)
	case "version":
		err = printVersion(m)
	case "force":
		if flag.Arg(0) == "" {
			slog.Error("force requires a target version argument")
			os.Exit(1)
		}
		var v int
		v, err = strconv.Atoi(flag.Arg(0))
		if err == nil {
			err = m.Force(v)
		}
	default:
		slog.Error("unknown action", "action", *action)
		os.Exit(1)
	}

	if err != nil {
		slog.Error("migration failed", "action", *action, "error", err)
		os.Exit(1)
	}
}

func runUp(m *migrate.Migrate, steps int) error {
	var err error
	if steps > 0 {
		err = m.Steps(steps)
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("no pending migrations")
		return nil
	}
	if err != nil {
		return err
	}
	return printVersion(m)
}

func runDown(m *migrate.Migrate, steps int) error {
	if steps == 0 {
		steps = 1
	}
	err := m.Steps(-steps)
	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("no migrations to roll back")
		return nil
	}
	if err != nil {
		return err
	}
	return printVersion(m)
}

func printVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		slog.Info("schema is empty")
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("schema version", "version", version, "dirty", dirty)
	return nil
}
