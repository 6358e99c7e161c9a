package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/csg33k/paperdesk/internal/domain"
	"github.com/csg33k/paperdesk/internal/ports"
)

// AcceptedDocuments is the file-input accept hint. It is not enforced.
const AcceptedDocuments = ".doc, .docx, .pdf, application/pdf, application/ms-word, " +
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// WaitingText is shown in place of the download link while no file is held
// in memory for the paper.
const WaitingText = "Waiting on server..."

// ViewField is the form field the upload and submit controls post the
// table's View back in.
const ViewField = "view"

// Mode selects which of the two table layouts a paper gets.
type Mode int

const (
	ModeUpload Mode = iota
	ModeGraded
)

func (m Mode) String() string {
	switch m {
	case ModeUpload:
		return "upload"
	case ModeGraded:
		return "graded"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ModeFor picks the layout for p.
func ModeFor(p domain.Paper) Mode {
	if p.Graded {
		return ModeGraded
	}
	return ModeUpload
}

// Callback receives the paper ID and the request that carried the user's
// interaction. A nil Callback is valid and does nothing.
type Callback func(paperID int64, r *http.Request)

// Invoke calls c if set and reports whether it did.
func (c Callback) Invoke(paperID int64, r *http.Request) bool {
	if c == nil {
		return false
	}
	c(paperID, r)
	return true
}

// SubmissionTable renders one paper's upload controls or, once graded, its
// read-only score grid. It holds no state between renders.
type SubmissionTable struct {
	Paper  domain.Paper
	Rubric *domain.Rubric
	Files  ports.FileRegistry
	Refs   ports.DownloadRefs

	// View identifies the page the table is rendered into. The download
	// reference belongs to it, so rendering the same paper for another
	// viewer leaves this one's link alone.
	View string

	OnUpload Callback
	OnSubmit Callback
}

// Upload forwards a file-selection event to OnUpload.
func (t SubmissionTable) Upload(r *http.Request) bool {
	return t.OnUpload.Invoke(t.Paper.ID, r)
}

// Submit forwards a submit activation to OnSubmit.
func (t SubmissionTable) Submit(r *http.Request) bool {
	return t.OnSubmit.Invoke(t.Paper.ID, r)
}

// ElementID is the id of the table's root element, the htmx swap target.
func (t SubmissionTable) ElementID() string {
	return "paper-" + itoa(t.Paper.ID)
}

// OwnerKey identifies the rendered download link for reference scoping.
func (t SubmissionTable) OwnerKey() string {
	if t.View == "" {
		return t.ElementID()
	}
	return t.ElementID() + "/" + t.View
}

// Render implements templ.Component.
func (t SubmissionTable) Render(ctx context.Context, w io.Writer) error {
	mode := ModeFor(t.Paper)
	if mode != ModeUpload && mode != ModeGraded {
		return fmt.Errorf("submission table: unknown mode %v", mode)
	}
	return submissionTable(t, mode, t.download()).Render(ctx, w)
}

// downloadLink is what the download block shows. An empty Href means the
// placeholder.
type downloadLink struct {
	Href string
	Name string
}

// download issues a reference for the in-memory file when one exists and
// releases the previous one otherwise.
func (t SubmissionTable) download() downloadLink {
	blob, ok := t.lookup()
	if !ok || t.Refs == nil {
		if t.Refs != nil {
			t.Refs.Release(t.OwnerKey())
		}
		return downloadLink{}
	}
	name := t.Paper.FileName()
	if name == "" {
		// not confirmed yet; no stored path to name it after
		name = blob.Name
	}
	return downloadLink{Href: t.Refs.Issue(t.OwnerKey(), blob, name), Name: name}
}

func (t SubmissionTable) lookup() (domain.Blob, bool) {
	if t.Files == nil {
		return domain.Blob{}, false
	}
	return t.Files.Lookup(t.Paper.ID)
}

func (t SubmissionTable) target() string {
	return "#" + t.ElementID()
}

// viewVals is the hx-vals payload that posts View back with each request.
func (t SubmissionTable) viewVals() string {
	b, _ := json.Marshal(map[string]string{ViewField: t.View})
	return string(b)
}

func categoryLabel(rb *domain.Rubric, i int) string {
	if rb == nil {
		return ""
	}
	return rb.Categories[i].Label
}

func categoryMax(rb *domain.Rubric, i int) string {
	if rb == nil {
		return ""
	}
	return optInt(rb.Categories[i].Max)
}
