package blob

import (
	"context"

	"github.com/opsdeck/cheatsheets/config"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/utils"
)

// BlobStore is the interface for pluggable blob storage backends.
type BlobStore interface {
	Put(ctx context.Context, data []byte, mime, filename string) (url string, err error)
	Get(ctx context.Context, url string) ([]byte, error)
	// URL returns the URL Put would return for filename.
	URL(filename string) string
}

// See filesystem.go and s3.go for driver implementations.

// NewDefaultBlobStore returns a BlobStore based on config, or a
// FilesystemBlobStore in config.DefaultExportDir if config is nil or empty.
func NewDefaultBlobStore(ctx context.Context, cfg *config.BlobConfig) (BlobStore, error) {
	if cfg == nil || cfg.Driver == "" || cfg.Driver == constants.BlobDriverFilesystem {
		dir := config.DefaultExportDir
		if cfg != nil && cfg.Directory != "" {
			dir = cfg.Directory
		}
		return NewFilesystemBlobStore(dir)
	}
	if cfg.Driver == constants.BlobDriverS3 {
		if cfg.Bucket == "" || cfg.Region == "" {
			return nil, utils.Errorf("s3 driver requires bucket and region")
		}
		return NewS3BlobStore(ctx, cfg.Bucket, cfg.Region, cfg.Prefix)
	}
	return nil, utils.Errorf("unsupported blob driver: %s", cfg.Driver)
}
