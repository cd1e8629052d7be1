// Package storage keeps uploaded project images outside the database.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidKey = errors.New("invalid storage key")

// ImageStore persists image bytes under a caller-chosen key
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
}
