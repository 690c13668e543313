package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	_ Repository      = (*SQLiteRepository)(nil)
	_ IDCanonicalizer = (*SQLiteRepository)(nil)
)

// SQLiteRepository stores posts in a local SQLite file. Timestamps are kept as
// Unix milliseconds.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path, creating its directory
// and the posts table as needed.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during a write; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.ExecContext(ctx, `
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		_ = db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	r := &SQLiteRepository{db: db}
	if err := r.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL CHECK (title <> ''),
    body TEXT NOT NULL CHECK (body <> ''),
    author TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at DESC);
`)
	if err != nil {
		return fmt.Errorf("sqlite schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, body, author, created_at, updated_at
		 FROM posts ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := scanSQLitePost(rows)
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

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Post, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, body, author, created_at, updated_at
		 FROM posts WHERE id = ?`, uid.String())
	p, err := scanSQLitePost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, f Fields, at time.Time) (*Post, error) {
	p := &Post{
		ID:        uuid.NewString(),
		Title:     f.Title,
		Body:      f.Body,
		Author:    f.Author,
		CreatedAt: at.UTC(),
		UpdatedAt: at.UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, title, body, author, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Body, p.Author, at.UnixMilli(), at.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, f Fields, at time.Time) (*Post, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, body = ?, author = ?, updated_at = ? WHERE id = ?`,
		f.Title, f.Body, f.Author, at.UnixMilli(), uid.String())
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	} else if n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	uid, err := parseUUID(id)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, uid.String())
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

func (r *SQLiteRepository) CanonicalID(id string) (string, error) {
	return canonicalUUID(id)
}

func scanSQLitePost(row rowScanner) (*Post, error) {
	var (
		p                Post
		created, updated int64
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Body, &p.Author, &created, &updated); err != nil {
		return nil, err
	}
	p.CreatedAt = time.UnixMilli(created).UTC()
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	return &p, nil
}
