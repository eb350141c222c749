/*
Package blob stores uploaded documents on the local filesystem.

PURPOSE:

	Payslip PDFs land here. Paths are sanitized and kept relative to a
	single root directory so a crafted filename cannot escape it.

SEE ALSO:
  - hr/payslip.go: The BlobStore interface this satisfies
*/
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/warp/workforce/hr"
)

// LocalStore writes blobs under a root directory.
type LocalStore struct {
	root string
}

var _ hr.BlobStore = (*LocalStore)(nil)

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Store writes data under a sanitized version of suggestedPath and
// returns the relative path recorded in the registry. Collisions get a
// random suffix rather than overwriting.
func (s *LocalStore) Store(ctx context.Context, data []byte, suggestedPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel := sanitizePath(suggestedPath)
	full := filepath.Join(s.root, rel)

	if _, err := os.Stat(full); err == nil {
		ext := filepath.Ext(rel)
		rel = strings.TrimSuffix(rel, ext) + "-" + uuid.NewString()[:8] + ext
		full = filepath.Join(s.root, rel)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return rel, nil
}

// Open returns the stored bytes for a previously returned path.
func (s *LocalStore) Open(ctx context.Context, rel string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, sanitizePath(rel)))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// sanitizePath strips traversal components and leading separators.
func sanitizePath(p string) string {
	p = filepath.ToSlash(filepath.Clean("/" + p))
	return strings.TrimPrefix(p, "/")
}
