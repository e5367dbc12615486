// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite file or PostgreSQL connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - TokenSalt: Secret keying the stored bearer token hashes (required)
  - AuthPolicy: "collaborator" (default) or "owner"
  - EnvFile: dotenv file read before the environment (default: .env)
  - CORSOrigins: browser origins allowed to call the API (default: none)

# CLI Flags

	-p             Server port
	-d             Database URL
	-t             Database type
	--token-salt   Bearer token salt
	--auth-policy  Circuit access policy
	--env-file     Dotenv file
	--cors-origins Comma separated allowed origins

# Environment Variables

Flags fall back to environment variables:

	PORT         → -p
	DATABASE_URL → -d
	DATABASE_TYPE → -t
	TOKEN_SALT   → --token-salt
	AUTH_POLICY  → --auth-policy
	CORS_ORIGINS → --cors-origins

CLI flags take precedence over environment variables, and variables already
set in the environment take precedence over the dotenv file. A missing
dotenv file is not an error.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - TOKEN_SALT is missing
  - DATABASE_TYPE or AUTH_POLICY has an unknown value

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux, err := router.NewRouter(conn, cfg, clock.WallClock)
*/
package cliparse
