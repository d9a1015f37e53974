package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSplitGSPath(t *testing.T) {
	bucket, object, err := SplitGSPath("gs://scans/subject01/tensor.dat")
	if err != nil {
		t.Fatalf("SplitGSPath failed: %v", err)
	}
	if bucket != "scans" || object != "subject01/tensor.dat" {
		t.Errorf("Expected scans and subject01/tensor.dat, got %s and %s", bucket, object)
	}

	for _, bad := range []string{"gs://scans", "gs://scans/", "gs:///tensor.dat"} {
		if _, _, err := SplitGSPath(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestReadAllLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tensor.dat")
	if err := os.WriteFile(path, []byte("1\n1 0 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := ReadAll(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "1\n1 0 0\n" {
		t.Errorf("Unexpected contents %q", data)
	}

	if _, err := ReadAll(context.Background(), filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Errorf("Expected error for missing file")
	}
}

// TestGoogleStorageNeedsClient verifies that gs:// paths are not opened without a client
func TestGoogleStorageNeedsClient(t *testing.T) {
	if !IsGoogleStorage("gs://bucket/object") || IsGoogleStorage("/tmp/gs://x") {
		t.Errorf("IsGoogleStorage misclassified a path")
	}
	if _, err := Open(context.Background(), "gs://bucket/object", nil); err == nil {
		t.Errorf("Expected error without a storage client")
	}

	client, err := NewClientFor(context.Background(), "local.dat", "")
	if err != nil || client != nil {
		t.Errorf("Expected no client for local paths, got %v, %v", client, err)
	}
}
