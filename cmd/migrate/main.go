package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joyeria/backend/internal/infrastructure/config"
	"github.com/joyeria/backend/internal/infrastructure/logger"
	"github.com/joyeria/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Schema changes ship as plain SQL pairs under migrations/. This tool
// applies them against the configured database and scaffolds new pairs.

const migrationsDir = "migrations"

func main() {
	var (
		path     = flag.String("path", "", "migrations directory (default: ./"+migrationsDir+")")
		logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	command := flag.Arg(0)

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(log, *path, command, flag.Args()[1:]); err != nil {
		log.Fatal("Migration command failed",
			zap.String("command", command),
			zap.Error(err),
		)
	}
}

func run(log *zap.Logger, path, command string, args []string) error {
	dir, err := resolveDir(path)
	if err != nil {
		return err
	}

	// create and list work on the files alone
	switch command {
	case "create":
		return createPair(log, dir, args)
	case "list":
		return listPairs(log, dir)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(args, "step <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current schema version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty),
		)
		return nil
	case "force":
		n, err := intArg(args, "force <version>")
		if err != nil {
			return err
		}
		log.Warn("Overwriting the recorded schema version", zap.Int("version", n))
		return m.Force(n)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// resolveDir locates the migrations directory: the -path flag when
// given, then the working directory, then the repository root relative
// to the installed binary.
func resolveDir(path string) (string, error) {
	if path == "" {
		path = migrationsDir
		if _, err := os.Stat(path); err != nil {
			if exec, execErr := os.Executable(); execErr == nil {
				candidate := filepath.Join(filepath.Dir(exec), "..", "..", migrationsDir)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	return filepath.Abs(path)
}

func createPair(log *zap.Logger, dir string, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: migrate create <name> [description]")
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}

	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration pair created",
		zap.String("version", mf.Version),
		zap.String("up", mf.UpPath),
		zap.String("down", mf.DownPath),
	)
	return nil
}

func listPairs(log *zap.Logger, dir string) error {
	names, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		log.Info("No migrations found", zap.String("dir", dir))
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func intArg(args []string, hint string) (int, error) {
	if len(args) == 0 {
		return 0, errors.New("usage: migrate " + hint)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", args[0])
	}
	return n, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `Schema migrations for the joyeria ledger.

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    apply every pending migration
  down                  roll everything back
  step <n>              apply n migrations (negative rolls back)
  version               show the current schema version
  force <version>       overwrite the recorded version after a failed run
  create <name> [desc]  scaffold an up/down SQL pair
  list                  list the migration files

Flags:
  -path string          migrations directory (default: ./migrations)
  -log-level string     debug, info, warn or error (default: info)

The database connection comes from config.toml or the JOYERIA_DATABASE_*
environment variables.`)
}
