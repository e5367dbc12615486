// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db is the entity store: connection setup, migrations and the
gorm repository the services depend on.

# Connecting

Open selects the dialector by database type:

	conn, err := db.Open(db.TypeSQLite, "smartgarden.db")
	conn, err := db.Open(db.TypePostgres, "postgres://...")

SQLite uses the pure-Go modernc driver with foreign keys enabled; Postgres
uses lib/pq.

# Migrations

Migrate applies the embedded goose migrations for the chosen dialect:

	if err := db.Migrate(ctx, conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

# Tables

  - users: identities, user_type ADMIN | USER | DEVICE
  - circuits: name, active, health_check, owner_id, controller_id (unique)
  - circuit_collaborations: (circuit_id, user_id) access grants
  - scheduled_activations: recurring daily rules
  - one_time_activations: ad-hoc activations
  - activation_logs: completed activations, append-only
  - auth_tokens: HMAC hashes of bearer tokens

# Relationships

	users 1──? circuits (controller)
	users *──* circuits (via circuit_collaborations)
	circuits 1──* scheduled_activations
	circuits 1──* one_time_activations
	circuits 1──* activation_logs

Deleting a circuit cascades to every dependent row.

# Schedule Replacement

ReplaceSchedule deletes and re-inserts a circuit's schedule inside a single
transaction. Concurrent replacements are last-committed-wins.
*/
package db
