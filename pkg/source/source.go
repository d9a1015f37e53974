// Package source opens input files from local disk or Google Storage.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// IsGoogleStorage reports whether path is a gs:// URL
func IsGoogleStorage(path string) bool {
	return strings.HasPrefix(path, "gs://")
}

// SplitGSPath splits gs://bucket/object into its bucket and object name
func SplitGSPath(path string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return "", "", fmt.Errorf("tried to split google storage path %q into bucket and object, got %d parts", path, len(pathParts))
	}
	return pathParts[0], pathParts[1], nil
}

// Open returns a reader for path. gs:// paths need a non-nil client; local
// paths ignore it.
func Open(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	if !IsGoogleStorage(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return f, nil
	}

	if client == nil {
		return nil, fmt.Errorf("%s: google storage client is required", path)
	}
	bucketName, objectName, err := SplitGSPath(path)
	if err != nil {
		return nil, err
	}

	r, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %s", path, err))
	}
	return r, nil
}

// ReadAll reads the whole file at path
func ReadAll(ctx context.Context, path string, client *storage.Client) ([]byte, error) {
	r, err := Open(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %s", path, err))
	}
	return data, nil
}

// NewClientFor creates a storage client when any of paths is a gs:// URL
// and returns nil otherwise.
func NewClientFor(ctx context.Context, paths ...string) (*storage.Client, error) {
	for _, p := range paths {
		if IsGoogleStorage(p) {
			client, err := storage.NewClient(ctx)
			if err != nil {
				return nil, pfx.Err(err)
			}
			return client, nil
		}
	}
	return nil, nil
}
