package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/paperdesk/internal/metrics"
)

func TestNilManagerIsSafe(t *testing.T) {
	var m *metrics.Manager
	assert.NotPanics(t, func() {
		m.Upload()
		m.Submit()
		m.Download()
		m.RefIssued(1)
		m.RefRevoked("released", 0)
	})
}

func TestCountersAndHandler(t *testing.T) {
	m := metrics.New()
	m.Upload()
	m.Upload()
	m.Submit()
	m.RefIssued(1)
	m.RefIssued(2)
	m.RefRevoked("replaced", 1)

	n, err := testutil.GatherAndCount(m.Registry(), "paperdesk_download_refs_revoked_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "one reason label seen")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "paperdesk_uploads_total 2")
	assert.Contains(t, body, "paperdesk_submits_total 1")
	assert.Contains(t, body, "paperdesk_download_refs_issued_total 2")
	assert.Contains(t, body, "paperdesk_download_refs_live 1")
	assert.Contains(t, body, `paperdesk_download_refs_revoked_total{reason="replaced"} 1`)
}
