package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	rec := NewRecorder()

	started := testutil.ToFloat64(ScansStarted)
	inflight := testutil.ToFloat64(InFlightGauge)
	local := testutil.ToFloat64(ReportsPublished.WithLabelValues("local"))

	rec.ScanStarted()
	rec.InflightInc()
	rec.InflightInc()
	rec.InflightDec()
	rec.ReportPublished("local")
	rec.ScanCompleted(3 * time.Second)

	assert.Equal(t, started+1, testutil.ToFloat64(ScansStarted))
	assert.Equal(t, inflight+1, testutil.ToFloat64(InFlightGauge))
	assert.Equal(t, local+1, testutil.ToFloat64(ReportsPublished.WithLabelValues("local")))
}

func TestHandler(t *testing.T) {
	NewRecorder().RateLimited()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rr.Code)
	assert.Contains(t, string(body), "cyberio_rate_limit_rejects_total")
	assert.Contains(t, string(body), "cyberio_scans_inflight")
}
