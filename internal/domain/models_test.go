package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/csg33k/paperdesk/internal/domain"
)

func ptr(n int64) *int64 { return &n }

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"uploads/2016/teamA/essay.pdf": "essay.pdf",
		"essay.pdf":                    "essay.pdf",
		"papers/3/":                    "",
		"":                             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, domain.Paper{FilePath: in}.FileName(), in)
	}
}

func TestTotals(t *testing.T) {
	p := domain.Paper{Scores: [domain.CategoryCount]*int64{ptr(8), nil, ptr(7), ptr(10), ptr(6)}}
	assert.Equal(t, int64(31), p.Total())

	var rb *domain.Rubric
	assert.Zero(t, rb.MaxTotal())
	rb = &domain.Rubric{}
	rb.Categories[0].Max = ptr(10)
	rb.Categories[3].Max = ptr(5)
	assert.Equal(t, int64(15), rb.MaxTotal())
}
