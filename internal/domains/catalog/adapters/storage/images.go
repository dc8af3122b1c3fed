package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/Apurer/gifting-api/internal/domains/catalog/ports"
)

// MaxImageBytes caps a single upload.
const MaxImageBytes = 5 << 20

var allowedImages = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var _ ports.ImageStore = (*LocalImageStore)(nil)

// LocalImageStore writes product images to a directory on local disk. The content type is sniffed
// from the bytes; client supplied names and headers are ignored.
type LocalImageStore struct {
	dir string
}

// NewLocalImageStore creates dir when missing.
func NewLocalImageStore(dir string) (*LocalImageStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload directory not configured")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalImageStore{dir: abs}, nil
}

func (s *LocalImageStore) Save(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ports.ErrEmptyImage
	}
	if len(data) > MaxImageBytes {
		return "", ports.ErrImageTooLarge
	}
	mime := mimetype.Detect(data)
	if !mimeAllowed(mime) {
		return "", ports.ErrUnsupportedImage
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := uuid.NewString() + mime.Extension()
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return name, nil
}

func (s *LocalImageStore) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ports.ErrNotFound
	}
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ports.ErrNotFound
	}
	return path, nil
}

func mimeAllowed(m *mimetype.MIME) bool {
	for _, allowed := range allowedImages {
		if m.Is(allowed) {
			return true
		}
	}
	return false
}
