package metricsx

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.AuthDecision(StageRole, OutcomeDenied)
	c.AuthDecision(StageRole, OutcomeDenied)
	c.UserSync("lazy", "created")
	c.ErrorResponse("FORBIDDEN", "forbidden")
	c.Compensation("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.authDecisions.WithLabelValues(StageRole, OutcomeDenied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.userSync.WithLabelValues("lazy", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errorResponses.WithLabelValues("FORBIDDEN", "forbidden")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.compensations.WithLabelValues("failed")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.Compensation("restored")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `gatekeeper_profile_compensations_total{result="restored"} 1`))
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NotPanics(t, func() {
		r.AuthDecision("a", "b")
		r.Compensation("x")
	})
}
