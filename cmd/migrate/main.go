package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/affiliate/backend/internal/infrastructure/config"
	"github.com/affiliate/backend/internal/infrastructure/logger"
	"github.com/affiliate/backend/internal/infrastructure/migration"
	"github.com/affiliate/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

type options struct {
	migrationsPath string
	configPath     string
}

// command is one migrate subcommand. Commands with a nil run operate on the
// source tree via offline instead of a database.
type command struct {
	usage   string
	args    int
	offline func(opts options, args []string, log *zap.Logger) error
	run     func(m *migration.Migrator, args []string, log *zap.Logger) error
}

var commands = map[string]command{
	"up":   {usage: "up", run: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() }},
	"down": {usage: "down", run: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() }},
	"step": {usage: "step <n>", args: 1, run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return m.Steps(n)
	}},
	"goto": {usage: "goto <version>", args: 1, run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		version, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.GoTo(uint(version))
	}},
	"force": {usage: "force <version>", args: 1, run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.Force(version)
	}},
	"version": {usage: "version", run: func(m *migration.Migrator, _ []string, log *zap.Logger) error {
		st, err := m.Status()
		if err != nil {
			return err
		}
		if !st.Applied {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version", zap.Uint("version", st.Version), zap.Bool("dirty", st.Dirty))
		return nil
	}},
	"create": {usage: "create <name> [description]", args: 1, offline: func(opts options, args []string, log *zap.Logger) error {
		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		mf, err := migration.CreateMigration(sourceDir(opts), args[0], description, time.Now())
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath))
		return nil
	}},
	"list": {usage: "list", offline: func(opts options, _ []string, log *zap.Logger) error {
		names, err := migration.ListMigrations(sourceDir(opts))
		if err != nil {
			return err
		}
		log.Info("Available migrations", zap.Int("count", len(names)))
		for _, name := range names {
			fmt.Println("  -", name)
		}
		return nil
	}},
}

func main() {
	var opts options
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.StringVar(&opts.migrationsPath, "path", "", "read migrations from this directory instead of the embedded set")
	flag.StringVar(&opts.configPath, "config", "", "config file (default: config.toml lookup)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	name, args := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		printUsage()
		os.Exit(2)
	}
	if len(args) < cmd.args {
		fmt.Fprintf(os.Stderr, "usage: migrate %s\n", cmd.usage)
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.DateTime,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := execute(cmd, opts, args, log); err != nil {
		log.Fatal("Migration command failed", zap.String("command", name), zap.Error(err))
	}
}

func execute(cmd command, opts options, args []string, log *zap.Logger) error {
	if cmd.offline != nil {
		return cmd.offline(opts, args, log)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := newMigrator(db, opts, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return cmd.run(m, args, log)
}

func loadConfig(opts options) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFile(opts.configPath)
	}
	return config.Load()
}

func newMigrator(db *sql.DB, opts options, log *zap.Logger) (*migration.Migrator, error) {
	if opts.migrationsPath == "" {
		return migration.NewEmbedded(db, migrations.FS, log)
	}
	abs, err := filepath.Abs(opts.migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations path: %w", err)
	}
	return migration.NewFromPath(db, abs, log)
}

func sourceDir(opts options) string {
	if opts.migrationsPath != "" {
		return opts.migrationsPath
	}
	return defaultMigrationsDir
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Affiliate database migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    apply all pending migrations
  down                  roll back all migrations
  step <n>              apply n migrations, negative rolls back
  goto <version>        migrate to a specific version
  version               show the applied version
  force <version>       record a version without running it
  create <name> [desc]  write a new up/down file pair
  list                  list migrations in the source directory

Flags:
`)
	flag.PrintDefaults()
	fmt.Fprint(os.Stderr, `
Database settings come from config.toml and AFF_DATABASE_* variables.
`)
}
