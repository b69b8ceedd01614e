package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/metrics"
)

func TestNew_IndependentRegistries(t *testing.T) {
	// Registering twice on fresh registries must not panic.
	a := metrics.New(nil)
	b := metrics.New(prometheus.NewRegistry())

	a.RecordsTotal.WithLabelValues("saved").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.RecordsTotal.WithLabelValues("saved")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RecordsTotal.WithLabelValues("saved")))
}

func TestObserveSync(t *testing.T) {
	m := metrics.New(nil)
	started := time.Unix(1_780_000_000, 0)

	m.ObserveSync("manual", "succeeded", started, 3*time.Second)
	m.ObserveSync("scheduled", "failed", started.Add(time.Hour), time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRunsTotal.WithLabelValues("manual", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRunsTotal.WithLabelValues("scheduled", "failed")))
	// Failed runs leave the success timestamp alone.
	assert.Equal(t, float64(started.Unix()), testutil.ToFloat64(m.LastSyncTimestamp))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := metrics.New(nil)
	m.ExpiredDeletedTotal.Add(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "opportunities_expired_deleted_total 2")
}
