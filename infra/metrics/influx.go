package metrics

import (
	"context"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/ldarsim/core/events"
	coremetrics "github.com/kilianp07/ldarsim/core/metrics"
	"github.com/kilianp07/ldarsim/infra/logger"
)

// InfluxSink writes per-timestep series to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordTimestep writes one program point and one point per method.
func (s *InfluxSink) RecordTimestep(rec coremetrics.TimestepRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := []*write.Point{programPoint(rec)}
	for _, m := range methodNames(rec) {
		points = append(points, methodPoint(rec, m))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordReplicate writes a replicate lifecycle point.
func (s *InfluxSink) RecordReplicate(ev events.ReplicateEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, replicatePoint(ev))
}

// Close releases the underlying client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func programPoint(rec coremetrics.TimestepRecord) *write.Point {
	return write.NewPointWithMeasurement("ldar_timestep").
		AddTag("program", rec.Program).
		AddTag("run_id", rec.RunID).
		AddTag("replicate", strconv.Itoa(rec.Replicate)).
		AddField("timestep", rec.Timestep).
		AddField("total_cost", round3(rec.TotalCost)).
		AddField("candidate_flags", rec.CandidateFlags).
		AddField("active_leaks", rec.ActiveLeaks).
		AddField("emissions_kg", round3(rec.EmissionsKg)).
		SetTime(rec.Date)
}

func methodPoint(rec coremetrics.TimestepRecord, method string) *write.Point {
	return write.NewPointWithMeasurement("ldar_method_timestep").
		AddTag("program", rec.Program).
		AddTag("run_id", rec.RunID).
		AddTag("replicate", strconv.Itoa(rec.Replicate)).
		AddTag("method", method).
		AddField("sites_visited", rec.SitesVisited[method]).
		AddField("missed_leaks", rec.MissedLeaks[method]).
		AddField("cost", round3(rec.MethodCost[method])).
		SetTime(rec.Date)
}

func replicatePoint(ev events.ReplicateEvent) *write.Point {
	p := write.NewPointWithMeasurement("ldar_replicate").
		AddTag("program", ev.Program).
		AddTag("replicate", strconv.Itoa(ev.Index)).
		AddTag("stage", string(ev.Stage)).
		AddField("seed", strconv.FormatUint(ev.Seed, 10)).
		AddField("duration_s", round3(ev.Duration.Seconds()))
	if ev.Err != nil {
		p = p.AddField("error", ev.Err.Error())
	}
	if ev.Stage == events.ReplicateFinished {
		p = p.AddField("total_cost", round3(ev.Totals.TotalCost)).
			AddField("sites_visited", ev.Totals.SitesVisited).
			AddField("missed_leaks", ev.Totals.MissedLeaks).
			AddField("candidate_flags", ev.Totals.CandidateFlags)
	}
	return p.SetTime(ev.Time)
}

func methodNames(rec coremetrics.TimestepRecord) []string {
	seen := map[string]struct{}{}
	for m := range rec.SitesVisited {
		seen[m] = struct{}{}
	}
	for m := range rec.MethodCost {
		seen[m] = struct{}{}
	}
	for m := range rec.MissedLeaks {
		seen[m] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
