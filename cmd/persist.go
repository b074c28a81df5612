package main

import (
	"context"
	"os"
	"strings"

	"unik-bench/internal/database"
	"unik-bench/internal/logging"
)

type persistOptions struct {
	spoolDir string
	noSpool  bool
	influx   bool
}

// persist spools an artifact and optionally exports it to InfluxDB. Both are
// best effort: failures are logged and the command still succeeds.
func persist(ctx context.Context, artifact *database.SpoolArtifact, opts persistOptions) {
	logger := logging.GetLogger()

	if !opts.noSpool {
		path, err := database.WriteSpoolArtifact(opts.spoolDir, artifact)
		if err != nil {
			logger.WithError(err).Warn("Failed to write spool artifact")
		} else {
			logger.WithField("path", path).Info("Wrote spool artifact")
		}
	}

	if !opts.influx {
		return
	}
	settings, err := database.InfluxSettingsFromEnvironment()
	if err != nil {
		logger.WithError(err).Warn("InfluxDB export skipped")
		return
	}
	client, err := database.NewInfluxDBClient(settings)
	if err != nil {
		logger.WithError(err).Warn("InfluxDB export skipped")
		return
	}
	defer client.Close()
	if err := client.WriteArtifact(ctx, artifact); err != nil {
		logger.WithError(err).Warn("InfluxDB export failed")
	}
}

// spoolDirFor picks the spool directory: flag, then environment, then the
// toolkit configuration.
func spoolDirFor(flag, configured string) string {
	if flag != "" {
		return flag
	}
	if v := strings.TrimSpace(os.Getenv(database.SpoolDirEnv)); v != "" {
		return v
	}
	if configured != "" {
		return configured
	}
	return database.DefaultSpoolDir()
}
