package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/config"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/logger"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/migration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		configFile     string
		migrationsPath string
		logLevel       string
	)

	flag.StringVar(&configFile, "config", "", "Path to the TOML config file (default: search ./config.toml)")
	flag.StringVar(&migrationsPath, "path", "", "Migrations directory (default: embedded migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	// create and list work on a directory and need no database
	if command == "create" || command == "list" {
		dir := migrationsPath
		if dir == "" {
			dir = defaultMigrationsPath
		}
		absPath, err := filepath.Abs(dir)
		if err != nil {
			log.Fatal("Failed to get absolute path", zap.Error(err))
		}
		runFileCommand(log, command, absPath, args[1:])
		return
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatal("Migrations require the postgres driver; sqlite tables are created by the exporter",
			zap.String("driver", cfg.Database.Driver))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	var m *migration.Migrator
	if migrationsPath == "" {
		log.Info("Migration CLI started", zap.String("command", command), zap.String("source", "embedded"))
		m, err = migration.NewEmbedded(db, migrations.FS, log)
	} else {
		absPath, absErr := filepath.Abs(migrationsPath)
		if absErr != nil {
			log.Fatal("Failed to get absolute path", zap.Error(absErr))
		}
		log.Info("Migration CLI started", zap.String("command", command), zap.String("migrations_path", absPath))
		m, err = migration.New(db, absPath, log)
	}
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "step":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration step failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func runFileCommand(log *zap.Logger, command, dir string, args []string) {
	switch command {
	case "create":
		if len(args) < 1 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		mf, err := migration.CreateMigration(dir, args[0], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created successfully",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)

	case "list":
		list, err := migration.ListMigrations(dir)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(list) == 0 {
			log.Info("No migrations found", zap.String("path", dir))
			return
		}
		log.Info("Available migrations", zap.Int("count", len(list)))
		for _, m := range list {
			fmt.Println("  -", m)
		}
	}
}

func printUsage() {
	fmt.Println(`Connector Database Migration Tool

Creates the plenty_mapping and plenty_order tables in the shop database.

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  version               Show current migration version
  force <version>       Force set migration version (use with caution)
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations

Flags:
  -config string        TOML config file (default: ./config.toml)
  -path string          Migrations directory (default: embedded migrations;
                        ./migrations for create and list)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  CONNECTOR_DATABASE_HOST, CONNECTOR_DATABASE_PORT, CONNECTOR_DATABASE_USER,
  CONNECTOR_DATABASE_PASSWORD, CONNECTOR_DATABASE_DBNAME

Examples:
  migrate up
  migrate step -1
  migrate create add_mapping_remote_index "Index remote ids"`)
}
