// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open connects to the database named by dbType and dsn.
//
// SQLite runs on the pure-Go modernc driver with foreign keys enabled so
// that circuit deletes cascade. Postgres runs on lib/pq.
func Open(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dbType {
	case TypeSQLite:
		dialector = sqlite.Dialector{
			DriverName: "sqlite",
			DSN:        sqliteDSN(dsn),
		}
	case TypePostgres:
		dialector = postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        dsn,
		})
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}

	return conn, nil
}

// sqliteDSN adds the pragmas every connection in the pool needs.
// Transactions take the write lock at BEGIN so that concurrent writers
// wait on busy_timeout instead of failing with SQLITE_BUSY.
func sqliteDSN(dsn string) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(wal)",
		"_time_format=sqlite",
		"_txlock=immediate",
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
