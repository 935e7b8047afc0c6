package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"
)

// ErrNotFound is returned when a stored file does not exist.
var ErrNotFound = errors.New("file not found")

// BlobStore stores named byte streams. Save returns the name the blob was
// stored under; Open streams it back. Backends: local disk, S3.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// storedName builds the storage key for an upload: the current Unix
// millisecond timestamp joined to the original base name. Collisions are
// avoided only probabilistically, the same guarantee the original gave.
func storedName(original string) string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(original))
}
