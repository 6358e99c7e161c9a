package templates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/csg33k/paperdesk/internal/domain"
	"github.com/csg33k/paperdesk/internal/templates"
)

func TestIndexListsPapers(t *testing.T) {
	papers := []domain.Paper{
		{ID: 1, Submitter: "Team <A>", FilePath: "uploads/1/a.pdf"},
		essayPaper(true),
	}
	html := renderHTML(t, templates.Index(papers))

	assert.Contains(t, html, "<!doctype html>")
	assert.Contains(t, html, `<a href="/papers/1">Team &lt;A&gt;</a> <span class="file">a.pdf</span>`)
	assert.Contains(t, html, "GRADED · 40")
	assert.Contains(t, html, "UNGRADED")
}

func TestIndexEmpty(t *testing.T) {
	assert.Contains(t, renderHTML(t, templates.Index(nil)), "No papers yet.")
}

func TestIndexPaperWithoutFile(t *testing.T) {
	html := renderHTML(t, templates.Index([]domain.Paper{{ID: 2, Submitter: "Team B"}}))
	assert.Contains(t, html, `<span class="file">no file</span>`)
	assert.NotContains(t, html, "No papers yet.")
}

func TestDetailEmbedsTable(t *testing.T) {
	p := essayPaper(true)
	html := renderHTML(t, templates.Detail(p, templates.SubmissionTable{Paper: p, Rubric: sampleRubric()}))
	assert.Contains(t, html, `<div id="paper-7" class="paper-submission" data-mode="graded">`)
	assert.Contains(t, html, `href="/papers/7/report.pdf"`)
	assert.Contains(t, html, "<title>Paper #7</title>")
	assert.Contains(t, html, `<script src="https://unpkg.com/htmx.org@1.9.12"></script>`)

	p = essayPaper(false)
	html = renderHTML(t, templates.Detail(p, templates.SubmissionTable{Paper: p}))
	assert.NotContains(t, html, "report.pdf")
}
