package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS filings (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		url TEXT NOT NULL UNIQUE,
		filer_id TEXT NOT NULL DEFAULT '',
		form_type TEXT NOT NULL DEFAULT '',
		extracted_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS filing_entities (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		filing_id UUID NOT NULL REFERENCES filings(id) ON DELETE CASCADE,
		position INT NOT NULL,
		kind TEXT NOT NULL,
		entity_key TEXT NOT NULL,
		name TEXT NOT NULL,
		aliases TEXT[] NOT NULL DEFAULT '{}',
		contexts TEXT[] NOT NULL DEFAULT '{}',
		metadata JSONB,
		context_embedding vector,
		UNIQUE (filing_id, kind, entity_key)
	)`,
	`CREATE TABLE IF NOT EXISTS filing_relationships (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		filing_id UUID NOT NULL REFERENCES filings(id) ON DELETE CASCADE,
		position INT NOT NULL,
		actor_kind TEXT NOT NULL,
		actor_key TEXT NOT NULL,
		actor_name TEXT NOT NULL,
		target_kind TEXT NOT NULL,
		target_key TEXT NOT NULL,
		target_name TEXT NOT NULL,
		verb TEXT NOT NULL,
		contexts TEXT[] NOT NULL DEFAULT '{}',
		confidence INT NOT NULL,
		context_embedding vector
	)`,
	`CREATE INDEX IF NOT EXISTS idx_filing_entities_key ON filing_entities (kind, entity_key)`,
	`CREATE INDEX IF NOT EXISTS idx_filing_relationships_filing ON filing_relationships (filing_id)`,
	`CREATE INDEX IF NOT EXISTS idx_filing_relationships_actor ON filing_relationships (actor_kind, actor_key)`,
}

// Migrate creates the extraction schema if it does not exist.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
