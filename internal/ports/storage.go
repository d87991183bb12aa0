package ports

import (
	"context"
	"io"
)

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	// En localfs será el mismo object_key.
	// En gdrive será el fileId real (para poder leer/stream después).
	ObjectKey string
	Size      int64
}

// StorageProvider: implementaciones (localfs, gdrive)
type StorageProvider interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
	GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error)
}
