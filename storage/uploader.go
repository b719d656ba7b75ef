package storage

import (
	"context"
	"io"
)

type PutResult struct {
	Key      string
	Location string
	ETag     string
}

// ObjectStore writes immutable objects to a bucket.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) (*PutResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
