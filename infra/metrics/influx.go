package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/harborops/recvplan/core/metrics"
	"github.com/harborops/recvplan/infra/logger"
)

// InfluxSink writes engine events to an InfluxDB instance using the official
// client.
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

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails, so a missing time-series backend never blocks
// plan operations.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
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

// RecordPlanTransition writes the transition as a point.
func (s *InfluxSink) RecordPlanTransition(rec coremetrics.PlanTransitionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_transition").
		AddTag("plan_code", rec.PlanCode).
		AddTag("from", string(rec.From)).
		AddTag("to", string(rec.To)).
		AddField("plan_id", rec.PlanID).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordContainerAction writes the action as a point.
func (s *InfluxSink) RecordContainerAction(rec coremetrics.ContainerActionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("container_action").
		AddTag("action", rec.Action).
		AddTag("status", string(rec.Status)).
		AddTag("receive_kind", string(rec.ReceiveKind)).
		AddField("plan_id", rec.PlanID).
		AddField("container_id", rec.ContainerID).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordValidation writes the verdict summary as a point.
func (s *InfluxSink) RecordValidation(rec coremetrics.ValidationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_validation").
		AddTag("blocked", strconv.FormatBool(rec.Blocked)).
		AddField("errors", rec.Errors).
		AddField("warnings", rec.Warnings).
		AddField("duration_ms", rec.Duration.Milliseconds()).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}
