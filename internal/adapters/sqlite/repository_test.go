package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqliteadapter "github.com/csg33k/paperdesk/internal/adapters/sqlite"
	"github.com/csg33k/paperdesk/internal/domain"
)

// newRepo opens a fresh database and applies the dbmate "up" sections.
func newRepo(t *testing.T) *sqliteadapter.Repository {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	repo, err := sqliteadapter.New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	files, err := filepath.Glob(filepath.Join("..", "..", "..", "db", "migrations", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	sort.Strings(files)
	for _, f := range files {
		raw, err := os.ReadFile(f)
		require.NoError(t, err)
		up := strings.SplitN(string(raw), "-- migrate:down", 2)[0]
		up = strings.TrimPrefix(strings.TrimSpace(up), "-- migrate:up")
		require.NoError(t, repo.Exec(context.Background(), up), f)
	}
	return repo
}

func ptr(n int64) *int64 { return &n }

func seedRubric(t *testing.T, repo *sqliteadapter.Repository) *domain.Rubric {
	t.Helper()
	rb := &domain.Rubric{Name: "Position paper"}
	for i, label := range []string{"Research", "Argument", "Solutions", "Writing", "Citations"} {
		rb.Categories[i] = domain.RubricCategory{Label: label, Max: ptr(int64(10 + i))}
	}
	rb.Categories[4].Max = nil
	require.NoError(t, repo.CreateRubric(context.Background(), rb))
	return rb
}

func TestRubricRoundTrip(t *testing.T) {
	repo := newRepo(t)
	rb := seedRubric(t, repo)
	require.NotZero(t, rb.ID)

	got, err := repo.GetRubric(context.Background(), rb.ID)
	require.NoError(t, err)
	assert.Equal(t, "Position paper", got.Name)
	assert.Equal(t, "Research", got.Categories[0].Label)
	require.NotNil(t, got.Categories[3].Max)
	assert.Equal(t, int64(13), *got.Categories[3].Max)
	assert.Nil(t, got.Categories[4].Max)
	assert.Equal(t, int64(10+11+12+13), got.MaxTotal())

	_, err = repo.GetRubric(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaperLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	rb := seedRubric(t, repo)

	p := &domain.Paper{RubricID: rb.ID, Submitter: "Team A"}
	require.NoError(t, repo.CreatePaper(ctx, p))

	got, err := repo.GetPaper(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Graded)
	assert.Empty(t, got.FilePath)
	for _, s := range got.Scores {
		assert.Nil(t, s)
	}

	require.NoError(t, repo.AttachFile(ctx, p.ID, "uploads/1/essay.pdf"))
	scores := [domain.CategoryCount]*int64{ptr(8), ptr(9), ptr(7), ptr(10), nil}
	require.NoError(t, repo.RecordScores(ctx, p.ID, scores))

	got, err = repo.GetPaper(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Graded)
	assert.Equal(t, "essay.pdf", got.FileName())
	require.NotNil(t, got.Scores[0])
	assert.Equal(t, int64(8), *got.Scores[0])
	assert.Nil(t, got.Scores[4])
	assert.Equal(t, int64(34), got.Total())
}

func TestMissingPaper(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	_, err := repo.GetPaper(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.AttachFile(ctx, 42, "x"), domain.ErrNotFound)
	assert.ErrorIs(t, repo.RecordScores(ctx, 42, [domain.CategoryCount]*int64{}), domain.ErrNotFound)
}

func TestListPapersNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	rb := seedRubric(t, repo)

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, repo.CreatePaper(ctx, &domain.Paper{RubricID: rb.ID, Submitter: name}))
	}
	list, err := repo.ListPapers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Submitter)
	assert.Equal(t, "first", list[2].Submitter)
}

func TestPaperRequiresRubric(t *testing.T) {
	repo := newRepo(t)
	err := repo.CreatePaper(context.Background(), &domain.Paper{RubricID: 77})
	assert.Error(t, err, "foreign keys are enforced")
}
