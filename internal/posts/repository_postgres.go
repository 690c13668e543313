package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

var (
	_ Repository      = (*PostgresRepository)(nil)
	_ IDCanonicalizer = (*PostgresRepository)(nil)
)

// PostgresRepository stores posts in the posts table of a PostgreSQL database
// opened with the lib/pq driver.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(ctx context.Context, db *sql.DB) (*PostgresRepository, error) {
	r := &PostgresRepository{db: db}
	if err := r.migrate(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PostgresRepository) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS posts (
			id         UUID PRIMARY KEY,
			title      TEXT        NOT NULL CHECK (title <> ''),
			body       TEXT        NOT NULL CHECK (body <> ''),
			author     TEXT        NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, body, author, created_at, updated_at
		 FROM posts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := scanPostgresPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Post, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, body, author, created_at, updated_at
		 FROM posts WHERE id = $1`, uid)
	return postgresResult(scanPostgresPost(row))
}

func (r *PostgresRepository) Create(ctx context.Context, f Fields, at time.Time) (*Post, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO posts (id, title, body, author, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING id, title, body, author, created_at, updated_at`,
		uuid.New(), f.Title, f.Body, f.Author, at)
	p, err := scanPostgresPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, f Fields, at time.Time) (*Post, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		`UPDATE posts SET title = $2, body = $3, author = $4, updated_at = $5
		 WHERE id = $1
		 RETURNING id, title, body, author, created_at, updated_at`,
		uid, f.Title, f.Body, f.Author, at)
	return postgresResult(scanPostgresPost(row))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	uid, err := parseUUID(id)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgresPost(row rowScanner) (*Post, error) {
	var (
		p   Post
		uid uuid.UUID
	)
	if err := row.Scan(&uid, &p.Title, &p.Body, &p.Author, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = uid.String()
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func postgresResult(p *Post, err error) (*Post, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query post: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) CanonicalID(id string) (string, error) {
	return canonicalUUID(id)
}

func canonicalUUID(id string) (string, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return "", err
	}
	return uid.String(), nil
}

func parseUUID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return uid, nil
}
