package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// ObjectOpener streams objects from a bucket
type ObjectOpener interface {
	OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// OpenCatalog opens a catalog export given as a local path or an s3:// URI.
// objects may be nil when only local paths are used.
func OpenCatalog(ctx context.Context, source string, objects ObjectOpener) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "s3://") {
		bucket, key, ok := ParseS3URI(source)
		if !ok {
			return nil, fmt.Errorf("invalid s3 uri %q", source)
		}
		if objects == nil {
			return nil, fmt.Errorf("s3 catalog %q requires S3 configuration", source)
		}
		return objects.OpenObject(ctx, bucket, key)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return f, nil
}
