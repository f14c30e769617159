package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresSchema is applied by MigratePostgres. Identifiers are plain text so
// the same ids travel unchanged between backends.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id          text PRIMARY KEY DEFAULT gen_random_uuid()::text,
	author_id   text NOT NULL,
	title       text NOT NULL,
	body        text NOT NULL,
	media_urls  text[] NOT NULL DEFAULT '{}',
	tag_ids     text[] NOT NULL DEFAULT '{}',
	liked_by    text[] NOT NULL DEFAULT '{}',
	created_at  timestamptz NOT NULL DEFAULT now(),
	updated_at  timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS posts_tag_ids_idx ON posts USING gin (tag_ids);

CREATE TABLE IF NOT EXISTS comments (
	id          text PRIMARY KEY DEFAULT gen_random_uuid()::text,
	post_id     text NOT NULL,
	author_id   text NOT NULL,
	parent_id   text NULL,
	body        text NOT NULL,
	created_at  timestamptz NOT NULL DEFAULT now(),
	updated_at  timestamptz NOT NULL DEFAULT now(),
	liked_by    text[] NOT NULL DEFAULT '{}',
	disliked_by text[] NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS comments_parent_id_idx ON comments (parent_id);
CREATE INDEX IF NOT EXISTS comments_post_id_idx ON comments (post_id, created_at);
`

// MigratePostgres creates the forum tables when they do not exist.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, postgresSchema)
	return err
}
