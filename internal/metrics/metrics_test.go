package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationCounters(t *testing.T) {
	m := New()
	m.Mutation("update-fields", OutcomeOK)
	m.Mutation("update-fields", OutcomeOK)
	m.Mutation("update-fields", OutcomeForbidden)
	m.AuditFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.caseMutationsTotal.WithLabelValues("update-fields", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.caseMutationsTotal.WithLabelValues("update-fields", OutcomeForbidden)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditFailuresTotal))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/patients", 200, 0.01)
	m.Login("success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `http_requests_total{endpoint="/api/patients",method="GET",status_code="2xx"} 1`)
	assert.Contains(t, string(body), `login_attempts_total{result="success"} 1`)
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.AuditFailure()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.auditFailuresTotal))
}
