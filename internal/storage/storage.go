package storage

import "context"

// BlobStore persists image bytes and returns a stable, publicly reachable
// URL for them. Uploaded inputs and generated outputs both go through it.
// Read returns the stored bytes with their content type so the download
// endpoint can serve them directly.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Read(ctx context.Context, key string) ([]byte, string, error)
}
