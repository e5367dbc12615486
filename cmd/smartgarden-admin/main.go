// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command smartgarden-admin provisions users, tokens and circuits.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/danielhkuo/smartgarden/db"
)

func main() {
	// Missing .env is fine; the environment may be set directly
	_ = godotenv.Load()

	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "smartgarden-admin",
		Usage: "Provision users, tokens and circuits",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "database-url", Aliases: []string{"d"}, Usage: "SQLite file or PostgreSQL URL", Sources: cli.EnvVars("DATABASE_URL")},
			&cli.StringFlag{Name: "database-type", Aliases: []string{"t"}, Value: db.TypeSQLite, Usage: "sqlite or postgres", Sources: cli.EnvVars("DATABASE_TYPE")},
			&cli.StringFlag{Name: "token-salt", Usage: "secret keying stored token hashes", Sources: cli.EnvVars("TOKEN_SALT")},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			userCommand(),
			tokenCommand(),
			circuitCommand(),
			collaboratorCommand(),
			controllerCommand(),
			seedCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// openDB connects using the root flags and brings the schema up to date.
func openDB(ctx context.Context, cmd *cli.Command) (*gorm.DB, func(), error) {
	url := cmd.String("database-url")
	if url == "" {
		return nil, nil, cli.Exit("database URL required (use --database-url or DATABASE_URL env)", 1)
	}
	dbType := cmd.String("database-type")

	conn, err := db.Open(dbType, url)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	}

	if err := db.Migrate(ctx, conn, dbType); err != nil {
		closeFn()
		return nil, nil, err
	}
	return conn, closeFn, nil
}

func tokenSalt(cmd *cli.Command) (string, error) {
	salt := cmd.String("token-salt")
	if salt == "" {
		return "", cli.Exit("token salt required (use --token-salt or TOKEN_SALT env)", 1)
	}
	return salt, nil
}
