package artifact

import (
	"context"
	"errors"
	"fmt"

	"smartdiagnosis/internal/config"
)

// ErrNotFound is returned by Read when the named artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// Store persists named binary artifacts such as trained models.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Exists(ctx context.Context, name string) (bool, error)
	// Location describes where name lives, for logs.
	Location(name string) string
}

// New builds the store selected by ARTIFACTS_BACKEND.
func New(ctx context.Context, cfg config.ArtifactsConfig) (Store, error) {
	switch cfg.Backend {
	case config.ArtifactsLocal:
		return NewFileStore(cfg.Dir)
	case config.ArtifactsS3:
		client, err := NewS3Client(ctx)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown artifacts backend %q", cfg.Backend)
	}
}
