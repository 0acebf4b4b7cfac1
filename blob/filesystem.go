package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/opsdeck/cheatsheets/utils"
)

const fileURLPrefix = "file://"

// FilesystemBlobStore implements BlobStore using the local filesystem.
// This is the default blob store; exports land in a directory that a
// static host can serve.
type FilesystemBlobStore struct {
	dir string
}

// NewFilesystemBlobStore creates a new FilesystemBlobStore with the given directory.
// The directory will be created if it does not exist.
func NewFilesystemBlobStore(dir string) (*FilesystemBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FilesystemBlobStore{dir: dir}, nil
}

// Put stores the blob as a file in the directory. Returns a file:// URL.
func (f *FilesystemBlobStore) Put(ctx context.Context, data []byte, mime, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if filename == "" {
		filename = fmt.Sprintf("blob-%d", time.Now().UnixNano())
	}
	if !filepath.IsLocal(filename) {
		return "", utils.Errorf("invalid blob filename: %s", filename)
	}
	path := f.path(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	// Write atomically
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return fileURLPrefix + path, nil
}

// Get retrieves the blob from the file:// URL.
func (f *FilesystemBlobStore) Get(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(url, fileURLPrefix) {
		return nil, utils.Errorf("invalid file URL: %s", url)
	}
	return os.ReadFile(strings.TrimPrefix(url, fileURLPrefix))
}

// URL returns the file:// URL of filename inside the store directory.
func (f *FilesystemBlobStore) URL(filename string) string {
	return fileURLPrefix + f.path(filename)
}

// Dir is the directory blobs are written to.
func (f *FilesystemBlobStore) Dir() string {
	return f.dir
}

func (f *FilesystemBlobStore) path(filename string) string {
	return filepath.Join(f.dir, filepath.FromSlash(filename))
}
