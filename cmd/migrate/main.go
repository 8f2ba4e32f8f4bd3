package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/stockroute/backend/internal/infrastructure/config"
	"github.com/stockroute/backend/internal/infrastructure/logger"
	"github.com/stockroute/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const usage = `stockroute-migrate applies the StockRoute schema.

Usage:
  migrate [-dir path] [-log-level level] <command> [arg]

Commands:
  up               apply every pending migration
  down             revert every migration
  step <n>         move n migrations (negative reverts)
  goto <version>   move to a version
  version          print the applied version
  force <version>  mark a version applied without running it

Connection settings come from STOCKROUTE_DATABASE_* like the server.`

func main() {
	dir := flag.String("dir", "", "read migrations from this directory instead of the binary")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(config.LogConfig{Level: *level, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log, *dir, flag.Arg(0), flag.Arg(1)); err != nil {
		log.Fatal("Migration failed", zap.String("command", flag.Arg(0)), zap.Error(err))
	}
}

func run(log *zap.Logger, dir, command, arg string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	var m *migration.Migrator
	if dir != "" {
		m, err = migration.NewFromDir(db, dir, log)
	} else {
		m, err = migration.NewEmbedded(db, log)
	}
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() { _ = m.Close() }()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("step needs an integer count, got %q", arg)
		}
		return m.Steps(n)
	case "goto":
		v, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return fmt.Errorf("goto needs a version, got %q", arg)
		}
		return m.GoTo(uint(v))
	case "force":
		v, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("force needs a version, got %q", arg)
		}
		return m.Force(v)
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
