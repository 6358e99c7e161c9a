package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/csg33k/paperdesk/internal/adapters/pdf"
	"github.com/csg33k/paperdesk/internal/blobref"
	"github.com/csg33k/paperdesk/internal/domain"
	"github.com/csg33k/paperdesk/internal/metrics"
	"github.com/csg33k/paperdesk/internal/ports"
	"github.com/csg33k/paperdesk/internal/templates"
)

// Registry is the owner side of the in-memory upload registry.
type Registry interface {
	ports.FileRegistry
	Put(paperID int64, b domain.Blob)
}

var errNoFile = errors.New("no file selected")

type Handler struct {
	repo     ports.PaperRepository
	files    ports.FileStore
	registry Registry
	refs     *blobref.Store
	metrics  *metrics.Manager
	log      *slog.Logger

	maxUpload int64
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option { return func(h *Handler) { h.log = l } }

func WithMetrics(m *metrics.Manager) Option { return func(h *Handler) { h.metrics = m } }

// WithMaxUpload caps upload request bodies, in bytes.
func WithMaxUpload(n int64) Option { return func(h *Handler) { h.maxUpload = n } }

func New(repo ports.PaperRepository, files ports.FileStore, registry Registry, refs *blobref.Store, opts ...Option) *Handler {
	h := &Handler{
		repo:      repo,
		files:     files,
		registry:  registry,
		refs:      refs,
		log:       slog.Default(),
		maxUpload: 25 << 20,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /papers/{id}", h.viewPaper)
	mux.HandleFunc("POST /papers/{id}/upload", h.uploadPaper)
	mux.HandleFunc("POST /papers/{id}/submit", h.submitPaper)
	mux.HandleFunc("GET /papers/{id}/report.pdf", h.paperReport)
	mux.Handle("GET "+blobref.PathPrefix+"{token}", h.refs)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}
	return mux
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	papers, err := h.repo.ListPapers(r.Context())
	if err != nil {
		h.fail(w, r, 0, err)
		return
	}
	render(w, r, templates.Index(papers))
}

func (h *Handler) viewPaper(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", 400)
		return
	}
	p, rb, err := h.load(r.Context(), id)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	h.fetchStored(r.Context(), p)
	table := h.table(p, rb)
	table.View = uuid.NewString()
	render(w, r, templates.Detail(*p, table))
}

// uploadPaper receives the file input's change event and re-renders the table.
func (h *Handler) uploadPaper(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", 400)
		return
	}
	p, rb, err := h.load(r.Context(), id)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	var cbErr error
	view := h.table(p, rb)
	view.OnUpload = func(paperID int64, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
		cbErr = h.holdUpload(paperID, r)
	}
	view.Upload(r)
	if cbErr != nil {
		h.fail(w, r, id, cbErr)
		return
	}
	// The form is only parsed once the body is capped.
	view.View = viewID(r)
	render(w, r, view)
}

// submitPaper receives the submit click and confirms the held file.
func (h *Handler) submitPaper(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", 400)
		return
	}
	p, rb, err := h.load(r.Context(), id)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	var cbErr error
	view := h.table(p, rb)
	view.OnSubmit = func(paperID int64, r *http.Request) {
		cbErr = h.confirmUpload(r.Context(), paperID)
	}
	view.Submit(r)
	if cbErr != nil {
		h.fail(w, r, id, cbErr)
		return
	}
	// Pick up the new file path.
	p, rb, err = h.load(r.Context(), id)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	table := h.table(p, rb)
	table.View = viewID(r)
	render(w, r, table)
}

func (h *Handler) paperReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", 400)
		return
	}
	p, rb, err := h.load(r.Context(), id)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	var buf bytes.Buffer
	if err := pdf.GenerateReport(p, rb, &buf); err != nil {
		h.fail(w, r, id, err)
		return
	}
	filename := fmt.Sprintf("paper_%d_scores.pdf", p.ID)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", blobref.Attachment(filename))
	w.Write(buf.Bytes())
}

// holdUpload reads the multipart "file" field into the registry.
func (h *Handler) holdUpload(paperID int64, r *http.Request) error {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("%w: %v", errNoFile, err)
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: %v", errNoFile, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	h.registry.Put(paperID, domain.Blob{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	})
	h.metrics.Upload()
	h.log.Info("upload held", "paper_id", paperID, "name", hdr.Filename, "bytes", len(data))
	return nil
}

// confirmUpload persists the held file and records its path on the paper.
func (h *Handler) confirmUpload(ctx context.Context, paperID int64) error {
	blob, ok := h.registry.Lookup(paperID)
	if !ok {
		return errNoFile
	}
	filePath, err := h.files.Save(ctx, paperID, blob.Name, blob.ContentType, bytes.NewReader(blob.Data))
	if err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	if err := h.repo.AttachFile(ctx, paperID, filePath); err != nil {
		return fmt.Errorf("attach file: %w", err)
	}
	h.metrics.Submit()
	h.log.Info("upload confirmed", "paper_id", paperID, "path", filePath)
	return nil
}

// fetchStored loads a previously confirmed file into the registry when the
// registry has nothing for the paper. Failures leave the placeholder showing.
func (h *Handler) fetchStored(ctx context.Context, p *domain.Paper) {
	if p.FilePath == "" {
		return
	}
	if _, ok := h.registry.Lookup(p.ID); ok {
		return
	}
	rc, err := h.files.Open(ctx, p.FilePath)
	if err != nil {
		h.log.Warn("fetch stored paper", "paper_id", p.ID, "path", p.FilePath, "err", err)
		return
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		h.log.Warn("read stored paper", "paper_id", p.ID, "err", err)
		return
	}
	h.registry.Put(p.ID, domain.Blob{
		Name:        p.FileName(),
		ContentType: mime.TypeByExtension(path.Ext(p.FilePath)),
		Data:        data,
	})
}

func (h *Handler) load(ctx context.Context, id int64) (*domain.Paper, *domain.Rubric, error) {
	p, err := h.repo.GetPaper(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rb, err := h.repo.GetRubric(ctx, p.RubricID)
	if errors.Is(err, domain.ErrNotFound) {
		// Render with blank rubric cells.
		return p, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return p, rb, nil
}

func (h *Handler) table(p *domain.Paper, rb *domain.Rubric) templates.SubmissionTable {
	return templates.SubmissionTable{
		Paper:  *p,
		Rubric: rb,
		Files:  h.registry,
		Refs:   h.refs,
	}
}

// viewID returns the view a table request was posted from, or a fresh one
// when the field is missing or malformed.
func viewID(r *http.Request) string {
	if id, err := uuid.Parse(r.FormValue(templates.ViewField)); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, id int64, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &maxErr):
		http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, errNoFile):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, pdf.ErrNotGraded):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "paper_id", id, "err", err)
		http.Error(w, err.Error(), 500)
	}
}

// render writes a templ component to the response.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(r.PathValue(key), 10, 64)
}
