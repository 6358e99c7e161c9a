package ports

import (
	"context"
	"io"

	"github.com/csg33k/paperdesk/internal/domain"
)

// PaperRepository defines persistence operations.
type PaperRepository interface {
	CreateRubric(ctx context.Context, r *domain.Rubric) error
	GetRubric(ctx context.Context, id int64) (*domain.Rubric, error)

	CreatePaper(ctx context.Context, p *domain.Paper) error
	GetPaper(ctx context.Context, id int64) (*domain.Paper, error)
	ListPapers(ctx context.Context) ([]domain.Paper, error)
	// AttachFile records the storage path of a confirmed upload.
	AttachFile(ctx context.Context, id int64, filePath string) error
	// RecordScores stores the five category scores and marks the paper graded.
	RecordScores(ctx context.Context, id int64, scores [domain.CategoryCount]*int64) error
}

// FileStore persists confirmed uploads.
type FileStore interface {
	// Save writes the file and returns its slash-delimited storage path.
	Save(ctx context.Context, paperID int64, name, contentType string, r io.Reader) (string, error)
	Open(ctx context.Context, filePath string) (io.ReadCloser, error)
}

// FileRegistry is a read-only view over the in-memory uploads keyed by
// paper ID. The owner mutates it elsewhere.
type FileRegistry interface {
	Lookup(paperID int64) (domain.Blob, bool)
}

// DownloadRefs issues short-lived download URLs for in-memory blobs.
type DownloadRefs interface {
	// Issue returns a fresh URL for blob and revokes any URL previously
	// issued to owner.
	Issue(owner string, blob domain.Blob, name string) string
	// Release revokes the URL held by owner, if any.
	Release(owner string)
}
