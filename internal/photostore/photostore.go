// Package photostore holds service and marketing attachments.
package photostore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("attachment not found")

// Prefixes group attachments by the ledger they belong to.
const (
	PrefixService   = "service-images"
	PrefixMarketing = "marketing-images"
)

type PhotoStore interface {
	// Save stores r under a generated unique key below prefix.
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
	// URL returns the public address of a stored key.
	URL(storageKey string) string
}
