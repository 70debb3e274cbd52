package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Upload is an asset received with a request.
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// AssetStore persists uploaded assets and returns the reference stored on the issue.
type AssetStore interface {
	Save(ctx context.Context, upload Upload) (string, error)
	Delete(ctx context.Context, ref string) error
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// LocalStore writes assets below a directory served statically under urlPrefix.
type LocalStore struct {
	dir       string
	urlPrefix string
	now       func() time.Time
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		now:       time.Now,
	}, nil
}

// Dir returns the directory served for uploads.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes the upload and returns its relative URL, e.g. /uploads/1700000000000-ab12cd34-bin.jpg.
func (s *LocalStore) Save(ctx context.Context, upload Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if upload.Body == nil {
		return "", errors.New("upload has no body")
	}

	name := fmt.Sprintf("%d-%s-%s", s.now().UnixMilli(), uuid.NewString()[:8], safeFileName(upload.FileName))
	target := filepath.Join(s.dir, name)

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create asset: %w", err)
	}
	if _, err := io.Copy(f, upload.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("write asset: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("close asset: %w", err)
	}
	return path.Join(s.urlPrefix, name), nil
}

// Delete removes an asset previously returned by Save. Unknown references are ignored.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	prefix := s.urlPrefix + "/"
	if !strings.HasPrefix(ref, prefix) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(ref, prefix))
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func safeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "image"
	}
	if len(base) > 80 {
		base = base[len(base)-80:]
	}
	return base
}
