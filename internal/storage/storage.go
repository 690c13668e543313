// Package storage holds the object stores the mirror worker writes post
// snapshots to.
package storage

import "context"

type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
