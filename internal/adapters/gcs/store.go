// Package gcs saves confirmed uploads as Google Cloud Storage objects.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/csg33k/paperdesk/internal/domain"
)

const objectPrefix = "papers"

// Store writes objects named papers/{paperID}/{name}; that name is also the
// file path recorded on the paper.
type Store struct {
	client *storage.Client
	bucket string
}

// New creates a client using application default credentials.
func New(ctx context.Context, bucket string) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("gcs: bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: new client: %w", err)
	}
	return &Store{client: client, bucket: bucket}, nil
}

func (s *Store) Save(ctx context.Context, paperID int64, name, contentType string, r io.Reader) (string, error) {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		return "", errors.New("gcs: invalid file name")
	}
	object := path.Join(objectPrefix, strconv.FormatInt(paperID, 10), name)

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("gcs: write %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs: close %s: %w", object, err)
	}
	return object, nil
}

func (s *Store) Open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	rd, err := s.client.Bucket(s.bucket).Object(filePath).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("gcs: open %s: %w", filePath, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("gcs: open %s: %w", filePath, err)
	}
	return rd, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
