// File: internal/database/database.go
package database

import (
	"context"
	"embed"
	"io/fs"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations
var migrations embed.FS

// Driver names a supported SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"

	defaultSQLitePath = "taskmate.db"
)

// Options configures Open.
type Options struct {
	Driver Driver
	DSN    string
	Debug  bool
}

// Open connects to the configured database. SQLite connections enforce
// foreign keys and are limited to a single writer so transactions on the
// same conversation serialize instead of failing with SQLITE_BUSY.
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(sqliteDSN(opts.DSN))
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, errors.New("postgres driver requires DB_DSN")
		}
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, errors.Errorf("unsupported database driver %q", opts.Driver)
	}

	logMode := gormlogger.Silent
	if opts.Debug {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if opts.Driver == DriverSQLite || opts.Driver == "" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "failed to access sql.DB")
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate applies every pending embedded migration for the driver and
// returns the number of migrations applied.
func Migrate(ctx context.Context, db *gorm.DB, driver Driver) (int, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, errors.Wrap(err, "failed to access sql.DB")
	}

	dialect, dir := goose.DialectSQLite3, "migrations/sqlite"
	if driver == DriverPostgres {
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	}

	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return 0, errors.Wrap(err, "failed to open embedded migrations")
	}

	// goose holds a dedicated connection while it runs, so lift the single
	// connection cap for the duration of the migration.
	if driver != DriverPostgres {
		sqlDB.SetMaxOpenConns(0)
		defer sqlDB.SetMaxOpenConns(1)
	}

	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create migration provider")
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to apply migrations")
	}
	return len(results), nil
}

func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = defaultSQLitePath
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
