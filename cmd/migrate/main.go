package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"invoicepipe/internal/config"
)

const usage = `usage: migrate <command>

commands:
  up          apply all pending invoice schema migrations
  down [N]    revert the last N migrations (default 1)
  version     print the current schema version
  force V     mark version V as clean after a failed migration`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("migrate %s: %v", os.Args[1], err)
	}
}

func run(cmd string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	m, err := migrate.New("file://"+cfg.DB.MigrationsDir, cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("opening %s: %w", cfg.DB.MigrationsDir, err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Printf("migrate: closing: source=%v database=%v", srcErr, dbErr)
		}
	}()

	switch cmd {
	case "up":
		if err := m.Up(); ignoreNoChange(err) != nil {
			return err
		}
	case "down":
		n, err := intArg(args, 1)
		if err != nil {
			return err
		}
		if err := m.Steps(-n); ignoreNoChange(err) != nil {
			return err
		}
	case "force":
		if len(args) == 0 {
			return errors.New("force requires a version")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		if err := m.Force(v); err != nil {
			return err
		}
	case "version":
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Printf("migrate %s: invoices schema has no migrations applied", cmd)
	case err != nil:
		return fmt.Errorf("reading version: %w", err)
	default:
		log.Printf("migrate %s: invoices schema at version %d (dirty=%t)", cmd, version, dirty)
	}
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// intArg parses the first positional argument as a positive count.
func intArg(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid count %q", args[0])
	}
	return n, nil
}
