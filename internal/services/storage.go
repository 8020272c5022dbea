package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

// FileStore keeps uploaded source documents until the worker reads them.
type FileStore interface {
	Save(ctx context.Context, userID uint, filename string, r io.Reader) (string, int64, error)
	Remove(ctx context.Context, path string) error
}

type localFileStore struct {
	root     string
	maxBytes int64
	log      *logger.Logger
}

// NewLocalFileStore writes under root/<user>/<uuid><ext>. maxBytes <= 0 disables the cap.
func NewLocalFileStore(log *logger.Logger, root string, maxBytes int64) (FileStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localFileStore{root: root, maxBytes: maxBytes, log: log.With("service", "LocalFileStore")}, nil
}

func (s *localFileStore) Save(ctx context.Context, userID uint, filename string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	dir := filepath.Join(s.root, fmt.Sprintf("%d", userID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create user dir: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(dir, uuid.NewString()+ext)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create upload file: %w", err)
	}
	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if copyErr == nil && s.maxBytes > 0 && n > s.maxBytes {
		copyErr = errTooLarge
	}
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr != nil {
			return "", 0, copyErr
		}
		return "", 0, closeErr
	}
	s.log.Debug("Stored upload", "user_id", userID, "path", path, "bytes", n)
	return path, n, nil
}

func (s *localFileStore) Remove(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

var errTooLarge = fmt.Errorf("upload exceeds size limit")
