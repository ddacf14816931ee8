package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/wolfman30/storefront-platform/migrations"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

// command is one parsed invocation: up, down [steps], force <version> or version.
type command struct {
	name  string
	value int
}

func parseArgs(args []string) (command, error) {
	if len(args) == 0 {
		return command{name: "up"}, nil
	}
	cmd := command{name: strings.ToLower(args[0])}
	switch cmd.name {
	case "up", "version":
		return cmd, nil
	case "down":
		cmd.value = 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return cmd, fmt.Errorf("invalid step count %q", args[1])
			}
			cmd.value = n
		}
		return cmd, nil
	case "force":
		if len(args) < 2 {
			return cmd, errors.New("force requires a version")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return cmd, fmt.Errorf("invalid version: %w", err)
		}
		cmd.value = v
		return cmd, nil
	}
	return cmd, fmt.Errorf("unknown command %q (want up, down, force or version)", args[0])
}

func main() {
	_ = godotenv.Load()
	logger := logging.NewWithOptions(logging.Options{Level: "info", Format: "text", Service: "storefront-migrate"})

	cmd, err := parseArgs(os.Args[1:])
	if err != nil {
		logger.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if err := run(cmd, databaseURL, logger); err != nil {
		logger.Error("migration failed", "command", cmd.name, "error", err)
		os.Exit(1)
	}
}

func run(cmd command, databaseURL string, logger *logging.Logger) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("db driver: %w", err)
	}
	srcDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("source driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	switch cmd.name {
	case "force":
		if err := m.Force(cmd.value); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		logger.Info("forced version", "version", cmd.value)
		return nil
	case "down":
		err = m.Steps(-cmd.value)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("current version", "version", version, "dirty", dirty)
		return nil
	default:
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	logger.Info("migrations complete", "command", cmd.name)
	return nil
}
