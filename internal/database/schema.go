package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The graph schema: named nodes and typed directed edges, both scoped to a
// session. Belief edges carry the subject player and the attributed source;
// the other relations leave both NULL. Edge ids give the stable insertion
// order every Store sequence method relies on.
const ddl = `
CREATE TABLE IF NOT EXISTS game_nodes (
	id             BIGSERIAL PRIMARY KEY,
	session_id     UUID NOT NULL,
	kind           TEXT NOT NULL,
	name           TEXT NOT NULL,
	category       TEXT,
	player_mode    TEXT,
	character_name TEXT,
	UNIQUE (session_id, kind, name)
);

CREATE TABLE IF NOT EXISTS game_edges (
	id         BIGSERIAL PRIMARY KEY,
	session_id UUID NOT NULL,
	from_id    BIGINT NOT NULL REFERENCES game_nodes(id) ON DELETE CASCADE,
	to_id      BIGINT NOT NULL REFERENCES game_nodes(id) ON DELETE CASCADE,
	relation   TEXT NOT NULL,
	subject    TEXT,
	source     TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_game_edges_session_relation
	ON game_edges (session_id, relation, from_id);
`

// Bootstrap creates the graph tables if they do not exist.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, ddl)
	return err
}
