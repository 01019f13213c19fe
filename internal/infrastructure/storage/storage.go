package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"signflow/internal/config"
)

// ObjectStorage reads and writes document bytes by storage key
type ObjectStorage interface {
	// Download returns the full content stored under key
	Download(ctx context.Context, key string) ([]byte, error)

	// Upload stores content under key, replacing any previous object
	Upload(ctx context.Context, content []byte, key, contentType string) error
}

type fileStorage struct {
	basePath string
	logger   *zap.Logger
}

func NewObjectStorage(cfg *config.Config, logger *zap.Logger) (ObjectStorage, error) {
	return newFileStorage(cfg.Storage.BasePath, logger)
}

func newFileStorage(basePath string, logger *zap.Logger) (*fileStorage, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}

	// Ensure base directory exists
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	logger.Info("Object storage initialized",
		zap.String("base_path", basePath),
	)

	return &fileStorage{
		basePath: basePath,
		logger:   logger,
	}, nil
}

func (s *fileStorage) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(key, "/")))
	if key == "" || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.basePath, clean), nil
}

func (s *fileStorage) Download(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	s.logger.Debug("Object downloaded",
		zap.String("key", key),
		zap.Int("size_bytes", len(content)),
	)

	return content, nil
}

func (s *fileStorage) Upload(ctx context.Context, content []byte, key, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	// Write to a temp file first so readers never see a partial object
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close object %s: %w", key, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to store object %s: %w", key, err)
	}

	s.logger.Info("Object uploaded",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int("size_bytes", len(content)),
	)

	return nil
}
