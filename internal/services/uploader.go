package services

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"path/filepath"

	"garagetracker/internal/photostore"
)

// Attachment is one uploaded file waiting to be stored.
type Attachment struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Uploader stores attachments best-effort: a file that fails is logged and
// skipped while the others are kept.
type Uploader struct {
	store photostore.PhotoStore
}

func NewUploader(store photostore.PhotoStore) *Uploader {
	return &Uploader{store: store}
}

// UploadAll returns the public URLs of the files that were stored, in input
// order, and how many were skipped.
func (u *Uploader) UploadAll(ctx context.Context, prefix string, files []Attachment) (urls []string, failed int) {
	if len(files) == 0 {
		return nil, 0
	}
	if u == nil || u.store == nil {
		slog.WarnContext(ctx, "Attachment store not configured, dropping uploads", "count", len(files))
		return nil, len(files)
	}

	for _, f := range files {
		mimeType := f.ContentType
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = mime.TypeByExtension(filepath.Ext(f.Filename))
		}
		key, err := u.store.Save(ctx, prefix, mimeType, f.Body)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to upload attachment, skipping",
				"filename", f.Filename, "prefix", prefix, "error", err)
			failed++
			continue
		}
		urls = append(urls, u.store.URL(key))
	}
	return urls, failed
}
