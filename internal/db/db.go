package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schema string

// Unique constraint names Postgres assigns to the clientes table.
const (
	EmailUniqueConstraint = "clientes_email_key"
	TaxIDUniqueConstraint = "clientes_cpf_key"
)

// Connect opens a single logical connection to the store. The pool is capped
// at one connection so every statement runs over the same session.
func Connect(ctx context.Context, dbURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to open database")
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("failed to ping database")
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the clientes table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create clientes table: %w", err)
	}
	log.Info().Msg("clientes table verified")
	return nil
}
