// Package pdf renders a one-page score report for a graded paper: a header
// bar, the paper's identity, and the category / score / max score grid with
// a total row.
package pdf

import (
	"errors"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/csg33k/paperdesk/internal/domain"
)

// ErrNotGraded is returned for papers that have no scores yet.
var ErrNotGraded = errors.New("paper is not graded")

// GenerateReport writes the score report for p to w. rb may be nil, in which
// case category labels and maxima are left blank.
func GenerateReport(p *domain.Paper, rb *domain.Rubric, w io.Writer) error {
	if !p.Graded {
		return ErrNotGraded
	}
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()
	drawReport(pdf, p, rb)
	return pdf.Output(w)
}

func drawReport(pdf *fpdf.Fpdf, p *domain.Paper, rb *domain.Rubric) {
	pageW, pageH := pdf.GetPageSize()
	marginL, marginT, marginR, marginB := pdf.GetMargins()
	contentW := pageW - marginL - marginR

	// ── Header bar ───────────────────────────────────────────────────────────
	pdf.SetFillColor(30, 30, 30)
	pdf.Rect(marginL, marginT, contentW, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-4, 7, "PAPER SCORE REPORT", "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	y := marginT + 13

	// ── Paper section ────────────────────────────────────────────────────────
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 5.5, "PAPER", "LRT", 1, "L", true, 0, "")
	y += 5.5

	colHalf := contentW / 2
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(colHalf, 6, "Submitter: "+p.Submitter, "L", 0, "L", false, 0, "")
	pdf.CellFormat(colHalf, 6, "Paper #"+strconv.FormatInt(p.ID, 10), "R", 1, "R", false, 0, "")
	y += 6
	pdf.SetXY(marginL, y)
	file := p.FileName()
	if file == "" {
		file = "(no file)"
	}
	pdf.CellFormat(contentW, 5.5, "File: "+file, "LRB", 1, "L", false, 0, "")
	y += 10

	// ── Score grid ───────────────────────────────────────────────────────────
	catW := contentW * 0.6
	scoreW := (contentW - catW) / 2
	maxW := contentW - catW - scoreW

	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8.5)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(catW, 7, "Category", "1", 0, "L", true, 0, "")
	pdf.CellFormat(scoreW, 7, "Score", "1", 0, "C", true, 0, "")
	pdf.CellFormat(maxW, 7, "Max Score", "1", 1, "C", true, 0, "")
	y += 7
	pdf.SetTextColor(0, 0, 0)

	rowH := 6.5
	pdf.SetFont("Helvetica", "", 8.5)
	for i := 0; i < domain.CategoryCount; i++ {
		var label, maxScore string
		if rb != nil {
			label = rb.Categories[i].Label
			maxScore = optInt(rb.Categories[i].Max)
		}
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetXY(marginL, y)
		pdf.CellFormat(catW, rowH, label, "1", 0, "L", true, 0, "")
		pdf.CellFormat(scoreW, rowH, optInt(p.Scores[i]), "1", 0, "R", true, 0, "")
		pdf.CellFormat(maxW, rowH, maxScore, "1", 1, "R", true, 0, "")
		y += rowH
	}

	pdf.SetFillColor(220, 240, 220)
	pdf.SetFont("Helvetica", "B", 8.5)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(catW, rowH, "Total", "1", 0, "L", true, 0, "")
	pdf.CellFormat(scoreW, rowH, strconv.FormatInt(p.Total(), 10), "1", 0, "R", true, 0, "")
	pdf.CellFormat(maxW, rowH, strconv.FormatInt(rb.MaxTotal(), 10), "1", 1, "R", true, 0, "")

	// ── Footer ─────────────────────────────────────────────────────────────────
	pdf.SetXY(marginL, pageH-marginB-6)
	pdf.SetFont("Helvetica", "I", 7.5)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(contentW, 5, "Generated by Paper Desk", "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func optInt(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}
