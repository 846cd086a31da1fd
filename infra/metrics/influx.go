package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/d1vyadharsh1n1/MetroX/core/metrics"
	"github.com/d1vyadharsh1n1/MetroX/core/model"
	"github.com/d1vyadharsh1n1/MetroX/infra/logger"
)

const writeTimeout = 5 * time.Second

// InfluxSink writes run, override and schedule points to InfluxDB.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint. A URL ending
// in /api/v2/write is accepted.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: writeTimeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings InfluxDB and returns a NopSink when the
// health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
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

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes a run_completed point.
func (s *InfluxSink) RecordRun(res coremetrics.RunResult) error {
	p := write.NewPointWithMeasurement("run_completed").
		AddTag("run_id", res.RunID).
		AddTag("outcome", string(res.Outcome)).
		AddField("duration_s", round3(res.Duration.Seconds()))
	if res.Error != "" {
		p.AddField("error", res.Error)
	}
	return s.write(p.SetTime(res.Time))
}

// RecordOverride writes an override_request point.
func (s *InfluxSink) RecordOverride(res coremetrics.OverrideResult) error {
	p := write.NewPointWithMeasurement("override_request").
		AddTag("run_id", res.RunID).
		AddTag("action", res.Action).
		AddTag("train_id", res.TrainID).
		AddTag("outcome", res.Outcome)
	if res.Depot != "" {
		p.AddTag("depot", res.Depot)
	}
	p = p.AddTag("forced", strconv.FormatBool(res.Forced)).
		AddField("risk", round3(res.Risk)).
		AddField("from", res.From.String()).
		AddField("to", res.To.String()).
		SetTime(res.Time)
	return s.write(p)
}

// RecordSchedule writes a schedule_installed point with one field per status.
func (s *InfluxSink) RecordSchedule(snap coremetrics.ScheduleSnapshot) error {
	p := write.NewPointWithMeasurement("schedule_installed").
		AddTag("run_id", snap.RunID).
		AddField("trains", snap.Trains)
	for _, st := range model.Statuses {
		p.AddField(strings.ToLower(st.String()), snap.Counts[st])
	}
	return s.write(p.SetTime(snap.Time))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
