package filestore_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/paperdesk/internal/adapters/filestore"
	"github.com/csg33k/paperdesk/internal/domain"
)

func TestSaveAndOpen(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "uploads")
	d, err := filestore.NewDisk(root)
	require.NoError(t, err)

	p, err := d.Save(ctx, 7, "essay.pdf", "application/pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/7/essay.pdf", p)

	onDisk, err := os.ReadFile(filepath.Join(root, "7", "essay.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(onDisk))

	rc, err := d.Open(ctx, p)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

func TestSaveStripsDirectories(t *testing.T) {
	d, err := filestore.NewDisk(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	p, err := d.Save(context.Background(), 1, `..\..\C:\evil\paper.docx`, "", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/1/paper.docx", p)

	_, err = d.Save(context.Background(), 1, "..", "", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestOpenRejectsForeignPaths(t *testing.T) {
	ctx := context.Background()
	d, err := filestore.NewDisk(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	_, err = d.Open(ctx, "elsewhere/1/a.pdf")
	assert.Error(t, err)
	_, err = d.Open(ctx, "uploads/../secrets")
	assert.Error(t, err)

	_, err = d.Open(ctx, "uploads/1/missing.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
