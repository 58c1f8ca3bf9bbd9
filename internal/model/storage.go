package model

import (
	"context"
	"io"
)

// Storage keeps public objects such as mirrored profile pictures.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(key string) string
}
