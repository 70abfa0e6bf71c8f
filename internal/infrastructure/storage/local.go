// Package storage keeps order attachments on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Stephen-Muteti/writing-backend/internal/application/errs"
	"github.com/Stephen-Muteti/writing-backend/internal/application/interfaces"
	"github.com/Stephen-Muteti/writing-backend/internal/config"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
)

// FileStore lays files out as <root>/<owner id>/<order id>/<filename>.
type FileStore struct {
	logger logger.Logger
	root   string
}

func NewFileStore(config *config.Config, logger logger.Logger) (*FileStore, error) {
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}

	root := config.Uploads.OrdersDir
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	return &FileStore{logger: logger, root: root}, nil
}

var _ interfaces.FileStore = (*FileStore)(nil)

func (s *FileStore) Save(ctx context.Context, ownerID user.ID, orderID, filename string, data []byte) error {
	path, err := s.path(ownerID, orderID, filename)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create order dir: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

func (s *FileStore) List(ctx context.Context, ownerID user.ID, orderID string) ([]string, error) {
	dir := filepath.Join(s.root, string(ownerID), orderID)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	return names, nil
}

func (s *FileStore) Exists(ctx context.Context, ownerID user.ID, orderID, filename string) bool {
	path, err := s.path(ownerID, orderID, filename)
	if err != nil {
		return false
	}

	_, err = os.Stat(path)

	return err == nil
}

func (s *FileStore) Remove(ctx context.Context, ownerID user.ID, orderID, filename string) error {
	path, err := s.path(ownerID, orderID, filename)
	if err != nil {
		return err
	}

	if err = os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errs.ErrNotFound
		}
		return err
	}

	return nil
}

// path rejects names that would escape the owner's order directory.
func (s *FileStore) path(ownerID user.ID, orderID, filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", fmt.Errorf("%w: invalid filename %q", errs.ErrValidation, filename)
	}

	return filepath.Join(s.root, string(ownerID), orderID, filename), nil
}
