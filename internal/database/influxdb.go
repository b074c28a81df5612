package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"unik-bench/internal/logging"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// InfluxSettings are read from INFLUXDB_URL, INFLUXDB_TOKEN, INFLUXDB_ORG,
// INFLUXDB_BUCKET and INFLUXDB_TIMEOUT.
type InfluxSettings struct {
	URL     string        `envconfig:"URL" default:"http://localhost:8086"`
	Token   string        `envconfig:"TOKEN"`
	Org     string        `envconfig:"ORG"`
	Bucket  string        `envconfig:"BUCKET" default:"unik-bench"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

func InfluxSettingsFromEnvironment() (InfluxSettings, error) {
	var s InfluxSettings
	if err := envconfig.Process("INFLUXDB", &s); err != nil {
		return s, err
	}
	if s.Token == "" || s.Org == "" {
		return s, fmt.Errorf("INFLUXDB_TOKEN and INFLUXDB_ORG are required")
	}
	return s, nil
}

// Measurements written per artifact.
const (
	MeasurementRun     = "run_meta"
	MeasurementSummary = "profile_summary"
	MeasurementClean   = "clean_result"
	MeasurementCommand = "campaign_command"
)

type InfluxDBClient struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
	logger   *logrus.Logger
}

func NewInfluxDBClient(settings InfluxSettings) (*InfluxDBClient, error) {
	logger := logging.GetLogger()

	client := influxdb2.NewClient(settings.URL, settings.Token)

	ctx, cancel := context.WithTimeout(context.Background(), settings.Timeout)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		logger.WithField("url", settings.URL).WithError(err).Error("Failed to connect to InfluxDB")
		client.Close()
		return nil, err
	}

	if health.Status != "pass" {
		message := ""
		if health.Message != nil {
			message = *health.Message
		}
		logger.WithFields(logrus.Fields{
			"url":     settings.URL,
			"status":  health.Status,
			"message": message,
		}).Error("InfluxDB health check failed")
		client.Close()
		return nil, fmt.Errorf("influxdb at %s is not healthy: %s", settings.URL, health.Status)
	}

	logger.WithFields(logrus.Fields{
		"url":    settings.URL,
		"bucket": settings.Bucket,
		"org":    settings.Org,
	}).Info("Connected to InfluxDB")

	return &InfluxDBClient{
		client:   client,
		writeAPI: client.WriteAPIBlocking(settings.Org, settings.Bucket),
		bucket:   settings.Bucket,
		org:      settings.Org,
		logger:   logger,
	}, nil
}

func (idb *InfluxDBClient) Close() {
	idb.client.Close()
}

// WriteArtifact exports an artifact as points.
func (idb *InfluxDBClient) WriteArtifact(ctx context.Context, artifact *SpoolArtifact) error {
	points := ArtifactPoints(artifact)
	if len(points) == 0 {
		return nil
	}
	if err := idb.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("failed to write data points: %w", err)
	}
	idb.logger.WithFields(logrus.Fields{
		"bucket": idb.bucket,
		"kind":   artifact.Kind,
		"points": len(points),
	}).Info("Exported results to InfluxDB")
	return nil
}

// ArtifactPoints converts an artifact into one run point plus one point per
// profile row, cleaned file and campaign command.
func ArtifactPoints(artifact *SpoolArtifact) []*write.Point {
	if artifact == nil {
		return nil
	}

	ts := artifact.EndTime
	if ts.IsZero() {
		ts = artifact.CreatedAt
	}
	base := map[string]string{
		"kind":     artifact.Kind,
		"name":     artifact.Name,
		"checksum": artifact.Checksum,
	}

	points := []*write.Point{runPoint(artifact, base, ts)}

	for _, p := range artifact.Profiles {
		for _, row := range p.Rows {
			tags := withTags(base, map[string]string{
				"profile":     p.Title,
				"type":        p.Type,
				"source":      row.Source,
				"label":       row.Label,
				"environment": row.Environment,
				"stress":      strconv.FormatBool(row.Stress),
			})
			s := row.Summary
			points = append(points, influxdb2.NewPoint(MeasurementSummary, tags,
				map[string]interface{}{
					"count":  s.Count,
					"mean":   s.Mean,
					"median": s.Median,
					"std":    s.StdDev,
					"q1":     s.Q1,
					"q3":     s.Q3,
					"min":    s.Min,
					"max":    s.Max,
				}, ts))
		}
	}

	for _, r := range artifact.CleanResults {
		points = append(points, influxdb2.NewPoint(MeasurementClean,
			withTags(base, map[string]string{"dest": r.Dest}),
			map[string]interface{}{
				"source":  r.Source,
				"samples": r.Samples,
				"failed":  r.Err != nil || r.Error != "",
			}, ts))
	}

	for _, c := range artifact.Commands {
		started := c.StartedAt
		if started.IsZero() {
			started = ts
		}
		points = append(points, influxdb2.NewPoint(MeasurementCommand,
			withTags(base, map[string]string{
				"phase": c.Phase,
				"step":  c.Step,
				"vm":    strconv.Itoa(c.VM),
				"host":  c.Host,
			}),
			map[string]interface{}{
				"command":          c.Command,
				"duration_seconds": c.Duration.Seconds(),
				"failed":           c.Err != nil || c.Error != "",
			}, started))
	}

	return points
}

func runPoint(artifact *SpoolArtifact, base map[string]string, ts time.Time) *write.Point {
	fields := map[string]interface{}{
		"duration_seconds": artifact.EndTime.Sub(artifact.StartTime).Seconds(),
		"profiles":         len(artifact.Profiles),
		"cleaned_files":    len(artifact.CleanResults),
		"commands":         len(artifact.Commands),
	}
	if h := artifact.Host; h != nil {
		fields["hostname"] = h.Hostname
		fields["os_info"] = h.OSInfo
		fields["kernel_version"] = h.KernelVersion
		fields["cpu_vendor"] = h.CPUVendor
		fields["cpu_model"] = h.CPUModel
		fields["total_threads"] = h.TotalThreads
	}
	return influxdb2.NewPoint(MeasurementRun, withTags(base, nil), fields, ts)
}

func withTags(base, extra map[string]string) map[string]string {
	tags := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		if v != "" {
			tags[k] = v
		}
	}
	for k, v := range extra {
		if v != "" {
			tags[k] = v
		}
	}
	return tags
}
