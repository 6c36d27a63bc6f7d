package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/go-list-sync/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_CycleEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	c.CycleStarted(1)
	c.CycleStarted(2)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.inFlight))

	c.CycleFinished(models.SyncOperationResult{
		GroupID:    1,
		Status:     models.StatusSuccess,
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
	})
	c.CycleFinished(models.SyncOperationResult{
		GroupID: 2,
		Status:  models.StatusPartial,
		Failures: []models.MemberFailure{
			{MemberID: 3, Stage: models.StageFetch, Kind: "rate_limited"},
			{MemberID: 4, Stage: models.StageFetch, Kind: "rate_limited"},
		},
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
	})
	c.TriggerCoalesced(1)

	assert.Zero(t, testutil.ToFloat64(c.inFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cycles.WithLabelValues("SUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cycles.WithLabelValues("PARTIAL")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.memberFailures.WithLabelValues("fetch", "rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.coalesced))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))

	expected := `
# HELP listsync_triggers_coalesced_total Sync triggers folded into an in-flight cycle.
# TYPE listsync_triggers_coalesced_total counter
listsync_triggers_coalesced_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "listsync_triggers_coalesced_total"))
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.TriggerCoalesced(1)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "listsync_triggers_coalesced_total 1")
}
