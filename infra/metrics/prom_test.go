package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ldarsim/core/events"
	coremetrics "github.com/kilianp07/ldarsim/core/metrics"
)

func TestPromSink_RecordTimestep(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	rec := coremetrics.TimestepRecord{
		Program:        "P_OGI",
		SitesVisited:   map[string]int{"OGI": 3},
		MissedLeaks:    map[string]int{"OGI": 1},
		MethodCost:     map[string]float64{"OGI": 600},
		CandidateFlags: 2,
		ActiveLeaks:    7,
	}
	require.NoError(t, sink.RecordTimestep(rec))
	require.NoError(t, sink.RecordTimestep(rec))

	assert.Equal(t, 6.0, testutil.ToFloat64(sink.visits.WithLabelValues("P_OGI", "OGI")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.missed.WithLabelValues("P_OGI", "OGI")))
	assert.Equal(t, 1200.0, testutil.ToFloat64(sink.cost.WithLabelValues("P_OGI", "OGI")))
	assert.Equal(t, 7.0, testutil.ToFloat64(sink.activeLeaks.WithLabelValues("P_OGI")))

	expected := `
# HELP ldarsim_candidate_flags_total Candidate flags raised for follow-up
# TYPE ldarsim_candidate_flags_total counter
ldarsim_candidate_flags_total{program="P_OGI"} 4
`
	assert.NoError(t, testutil.CollectAndCompare(sink.flags, strings.NewReader(expected)))
}

func TestPromSink_RecordReplicate(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordReplicate(events.ReplicateEvent{Program: "P", Stage: events.ReplicateStarted}))
	require.NoError(t, sink.RecordReplicate(events.ReplicateEvent{Program: "P", Stage: events.ReplicateFinished, Duration: time.Second}))
	require.NoError(t, sink.RecordReplicate(events.ReplicateEvent{Program: "P", Stage: events.ReplicateFailed, Err: errors.New("x")}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.replicates.WithLabelValues("P", "finished")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.replicates.WithLabelValues("P", "failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.duration))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	s1, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	s2, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, s1.RecordTimestep(coremetrics.TimestepRecord{Program: "P", CandidateFlags: 1}))
	require.NoError(t, s2.RecordTimestep(coremetrics.TimestepRecord{Program: "P", CandidateFlags: 1}))
	assert.Equal(t, 2.0, testutil.ToFloat64(s2.flags.WithLabelValues("P")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordTimestep(coremetrics.TimestepRecord{Program: "P", SitesVisited: map[string]int{"OGI": 1}}))

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Contains(t, string(body), `ldarsim_site_visits_total{method="OGI",program="P"} 1`)
}
