// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the smartgarden API server.

smartgarden is the backend for irrigation circuits. Owners and
collaborators configure daily schedules and one-time activations, while the
controller device assigned to a circuit polls it, reports heartbeats and
logs completed activations.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=garden.db TOKEN_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --token-salt ...

A .env file in the working directory is read first.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - TOKEN_SALT (--token-salt): Secret keying stored token hashes

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - AUTH_POLICY (--auth-policy): collaborator (default) or owner

Migrations run at startup. Users, tokens and circuits are provisioned with
the smartgarden-admin command (cmd/smartgarden-admin).

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (circuits, controllers, users)
  - router: Route definitions using Go 1.22+ routing
  - middleware: logging, request ids, authentication, metrics, CORS, JSON helpers
  - circuits: circuit queries, schedule replacement, activation recording
  - auth: credentials, principals and authorization policies
  - models: entities and wire types
  - db: gorm connection, goose migrations, repository
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
