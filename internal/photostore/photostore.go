// Package photostore abstracts where normalized photo bytes live. The
// database stores only the returned key.
package photostore

import (
	"context"
	"io"
)

type PhotoStore interface {
	// Save writes the image bytes and returns an opaque storage key.
	Save(ctx context.Context, prefix string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
