// Package migrations embeds the relational corpus schemas.
package migrations

import _ "embed"

// Postgres creates the corpus tables for PostgreSQL.
//
//go:embed postgres.sql
var Postgres string

// SQLite creates the corpus tables for SQLite.
//
//go:embed sqlite.sql
var SQLite string
