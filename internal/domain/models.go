package domain

import (
	"errors"
	"strings"
	"time"
)

// CategoryCount is the number of scoring categories every rubric carries.
const CategoryCount = 5

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

// RubricCategory is one line of a rubric. A nil Max means the value has not
// been loaded or was never set.
type RubricCategory struct {
	Label string
	Max   *int64
}

type Rubric struct {
	ID         int64
	Name       string
	Categories [CategoryCount]RubricCategory
	CreatedAt  time.Time
}

// MaxTotal sums the maxima that are present.
func (r *Rubric) MaxTotal() int64 {
	if r == nil {
		return 0
	}
	var total int64
	for _, c := range r.Categories {
		if c.Max != nil {
			total += *c.Max
		}
	}
	return total
}

// Paper is a submitted document and, once graded, its scores.
type Paper struct {
	ID        int64
	RubricID  int64
	Submitter string
	// FilePath is slash-delimited; the last segment is the display file name.
	// Empty until a file has been confirmed by the server.
	FilePath  string
	Graded    bool
	Scores    [CategoryCount]*int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FileName returns the final segment of FilePath, or "" when no file is set.
func (p Paper) FileName() string {
	if p.FilePath == "" {
		return ""
	}
	i := strings.LastIndex(p.FilePath, "/")
	return p.FilePath[i+1:]
}

// Total sums the scores that are present.
func (p Paper) Total() int64 {
	var total int64
	for _, s := range p.Scores {
		if s != nil {
			total += *s
		}
	}
	return total
}

// Blob is an uploaded file held in memory before and after confirmation.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}
