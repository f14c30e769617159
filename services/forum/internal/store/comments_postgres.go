package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const commentColumns = `id, post_id, author_id, parent_id, body, created_at, updated_at, liked_by, disliked_by`

// PostgresCommentStore persists comments in Postgres.
type PostgresCommentStore struct {
	pool *pgxpool.Pool
}

// NewPostgresCommentStore creates a store backed by Postgres.
func NewPostgresCommentStore(pool *pgxpool.Pool) *PostgresCommentStore {
	return &PostgresCommentStore{pool: pool}
}

func (s *PostgresCommentStore) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	q := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1`
	return s.scanComments(ctx, q, postID)
}

func (s *PostgresCommentStore) GetByID(ctx context.Context, id string) (Comment, error) {
	q := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	c, err := scanComment(s.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	return c, err
}

func (s *PostgresCommentStore) Insert(ctx context.Context, c Comment) (Comment, error) {
	q := `INSERT INTO comments (post_id, author_id, parent_id, body, created_at, updated_at, liked_by, disliked_by)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	      RETURNING ` + commentColumns
	var parent *string
	if pid := c.ParentCommentID(); pid != "" {
		parent = &pid
	}
	row := s.pool.QueryRow(ctx, q, c.PostID, c.AuthorID, parent, c.Body,
		c.CreatedAt, c.UpdatedAt, c.LikedBy.Slice(), c.DislikedBy.Slice())
	return scanComment(row)
}

func (s *PostgresCommentStore) Replace(ctx context.Context, c Comment) error {
	const q = `UPDATE comments
	           SET post_id = $2, author_id = $3, parent_id = $4, body = $5,
	               created_at = $6, updated_at = $7, liked_by = $8, disliked_by = $9
	           WHERE id = $1`
	var parent *string
	if pid := c.ParentCommentID(); pid != "" {
		parent = &pid
	}
	_, err := s.pool.Exec(ctx, q, c.ID, c.PostID, c.AuthorID, parent, c.Body,
		c.CreatedAt, c.UpdatedAt, c.LikedBy.Slice(), c.DislikedBy.Slice())
	return err
}

func (s *PostgresCommentStore) DeleteOne(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return err
}

func (s *PostgresCommentStore) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = ANY($1)`, ids)
	return err
}

func (s *PostgresCommentStore) ListChildrenIDs(ctx context.Context, parentID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM comments WHERE parent_id = $1`, parentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *PostgresCommentStore) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE post_id = $1`, postID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresCommentStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresCommentStore) scanComments(ctx context.Context, q string, args ...any) ([]Comment, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	var liked, disliked []string
	if err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.ParentID, &c.Body,
		&c.CreatedAt, &c.UpdatedAt, &liked, &disliked); err != nil {
		return Comment{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	c.LikedBy = NewUserSet(liked...)
	c.DislikedBy = NewUserSet(disliked...)
	return c, nil
}
