package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postColumns = `id, author_id, title, body, media_urls, tag_ids, liked_by, created_at, updated_at`

// PostgresPostStore persists posts in Postgres.
type PostgresPostStore struct {
	pool *pgxpool.Pool
}

func NewPostgresPostStore(pool *pgxpool.Pool) *PostgresPostStore {
	return &PostgresPostStore{pool: pool}
}

func (s *PostgresPostStore) Insert(ctx context.Context, p Post) (Post, error) {
	q := `INSERT INTO posts (author_id, title, body, media_urls, tag_ids, liked_by, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	      RETURNING ` + postColumns
	row := s.pool.QueryRow(ctx, q, p.AuthorID, p.Title, p.Body, nonNil(p.MediaURLs), nonNil(p.TagIDs),
		p.LikedBy.Slice(), p.CreatedAt, p.UpdatedAt)
	return scanPost(row)
}

func (s *PostgresPostStore) GetByID(ctx context.Context, id string) (Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	p, err := scanPost(s.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	return p, err
}

func (s *PostgresPostStore) List(ctx context.Context, f PostFilter) ([]Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE 1=1`
	var args []any
	if f.AuthorID != "" {
		args = append(args, f.AuthorID)
		q += fmt.Sprintf(" AND author_id = $%d", len(args))
	}
	if len(f.TagIDs) > 0 {
		args = append(args, f.TagIDs)
		op := "&&"
		if f.MatchAll {
			op = "@>"
		}
		q += fmt.Sprintf(" AND tag_ids %s $%d", op, len(args))
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresPostStore) Replace(ctx context.Context, p Post) error {
	const q = `UPDATE posts
	           SET author_id = $2, title = $3, body = $4, media_urls = $5, tag_ids = $6,
	               liked_by = $7, created_at = $8, updated_at = $9
	           WHERE id = $1`
	_, err := s.pool.Exec(ctx, q, p.ID, p.AuthorID, p.Title, p.Body, nonNil(p.MediaURLs), nonNil(p.TagIDs),
		p.LikedBy.Slice(), p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *PostgresPostStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	var liked []string
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.MediaURLs, &p.TagIDs,
		&liked, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Post{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	p.LikedBy = NewUserSet(liked...)
	return p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
