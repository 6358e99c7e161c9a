package blobref_test

import (
	"context"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/paperdesk/internal/blobref"
	"github.com/csg33k/paperdesk/internal/domain"
	"github.com/csg33k/paperdesk/internal/metrics"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func token(url string) string { return strings.TrimPrefix(url, blobref.PathPrefix) }

var pdfBlob = domain.Blob{Name: "essay.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}

func TestIssueReplacesPreviousReference(t *testing.T) {
	s := blobref.New()
	a := s.Issue("paper-1", pdfBlob, "essay.pdf")
	b := s.Issue("paper-1", pdfBlob, "essay.pdf")
	c := s.Issue("paper-2", pdfBlob, "other.pdf")

	assert.True(t, strings.HasPrefix(a, blobref.PathPrefix))
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, s.Live())

	_, _, ok := s.Resolve(token(a))
	assert.False(t, ok)
	_, name, ok := s.Resolve(token(b))
	assert.True(t, ok)
	assert.Equal(t, "essay.pdf", name)
	_, name, ok = s.Resolve(token(c))
	assert.True(t, ok)
	assert.Equal(t, "other.pdf", name)
}

func TestRelease(t *testing.T) {
	s := blobref.New()
	u := s.Issue("paper-1", pdfBlob, "essay.pdf")
	s.Release("paper-1")
	s.Release("paper-1")
	s.Release("never-issued")

	_, _, ok := s.Resolve(token(u))
	assert.False(t, ok)
	assert.Equal(t, 0, s.Live())
}

func TestExpiryAndSweep(t *testing.T) {
	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := blobref.New(blobref.WithTTL(time.Minute), blobref.WithClock(c.now))
	u := s.Issue("paper-1", pdfBlob, "essay.pdf")
	s.Issue("paper-2", pdfBlob, "essay.pdf")

	c.t = c.t.Add(59 * time.Second)
	_, _, ok := s.Resolve(token(u))
	assert.True(t, ok)
	assert.Equal(t, 0, s.Sweep())

	c.t = c.t.Add(time.Second)
	_, _, ok = s.Resolve(token(u))
	assert.False(t, ok, "expired references do not resolve even before a sweep")
	assert.Equal(t, 2, s.Sweep())
	assert.Equal(t, 0, s.Live())

	// The owner slot was cleared, so a new issue does not count as a replacement.
	s.Issue("paper-1", pdfBlob, "essay.pdf")
	assert.Equal(t, 1, s.Live())
}

func TestRunStopsWithContext(t *testing.T) {
	s := blobref.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunClampsShortIntervals(t *testing.T) {
	s := blobref.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 0)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestAttachmentQuotesAwkwardNames(t *testing.T) {
	for _, name := range []string{`a"b.pdf`, `semi;colon.docx`, "spaced name.pdf", `back\slash.pdf`, "résumé.pdf"} {
		disposition, params, err := mime.ParseMediaType(blobref.Attachment(name))
		require.NoError(t, err, name)
		assert.Equal(t, "attachment", disposition)
		assert.Equal(t, name, params["filename"])
	}
}

func TestServeHTTPWithQuoteInName(t *testing.T) {
	s := blobref.New()
	u := s.Issue("paper-1", pdfBlob, `a"b.pdf`)

	mux := http.NewServeMux()
	mux.Handle("GET "+blobref.PathPrefix+"{token}", s)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, u, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, `a"b.pdf`, params["filename"])
}

func TestServeHTTP(t *testing.T) {
	m := metrics.New()
	s := blobref.New(blobref.WithMetrics(m))
	u := s.Issue("paper-1", pdfBlob, "essay.pdf")

	mux := http.NewServeMux()
	mux.Handle("GET "+blobref.PathPrefix+"{token}", s)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, u, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, "essay.pdf", params["filename"])
	assert.Equal(t, "%PDF", rec.Body.String())

	s.Release("paper-1")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, u, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1.0, gathered(t, m, "paperdesk_downloads_total"))
	assert.Equal(t, 0.0, gathered(t, m, "paperdesk_download_refs_live"))
}

func gathered(t *testing.T, m *metrics.Manager, name string) float64 {
	t.Helper()
	mfs, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		var sum float64
		for _, metric := range mf.GetMetric() {
			sum += metric.GetCounter().GetValue() + metric.GetGauge().GetValue()
		}
		return sum
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}
