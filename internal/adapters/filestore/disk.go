// Package filestore saves confirmed uploads on the local filesystem.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/csg33k/paperdesk/internal/domain"
)

// Disk stores files as {root}/{paperID}/{name}. Paths handed back to callers
// are slash-delimited and relative to root's parent, e.g. "uploads/7/essay.pdf".
type Disk struct {
	root string
}

func NewDisk(root string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{root: root}, nil
}

func (d *Disk) Save(ctx context.Context, paperID int64, name, _ string, r io.Reader) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(d.root, strconv.FormatInt(paperID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create paper dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return path.Join(filepath.Base(d.root), strconv.FormatInt(paperID, 10), name), nil
}

func (d *Disk) Open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	rel := strings.TrimPrefix(filePath, filepath.Base(d.root)+"/")
	if rel == filePath || strings.Contains(rel, "..") {
		return nil, fmt.Errorf("open %q: outside upload dir", filePath)
	}
	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open %q: %w", filePath, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// cleanName keeps only the final element of a client-supplied file name.
func cleanName(name string) (string, error) {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "", errors.New("invalid file name")
	}
	return name, nil
}
