package main

import (
	"fmt"
	"path/filepath"
	"time"

	"unik-bench/internal/config"
	"unik-bench/internal/database"
	"unik-bench/internal/datahandeling"
	"unik-bench/internal/dataparser"
	"unik-bench/internal/logging"
	"unik-bench/internal/metric"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// cleanRoot is the directory a kind is walked from when --root is not given.
func cleanRoot(toolkit *config.Toolkit, kind datahandeling.Kind) string {
	m := metric.Latency
	if kind == datahandeling.BootTimes {
		m = metric.Boot
	}
	return filepath.Join(toolkit.Paths.DataRoot, toolkit.TypeDir(m))
}

func newCleanCmd(global *globalOptions) *cobra.Command {
	var root string
	var walk datahandeling.WalkOptions
	var persistOpts persistOptions

	cmd := &cobra.Command{
		Use:       "clean cyclictest|boottime",
		Short:     "Convert raw logs into cached arrays",
		Long:      "Walk a directory of raw cyclictest or boot time logs and write one trimmed, sorted .npy array per log",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"cyclictest", "boottime"},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger()

			kind, err := datahandeling.ParseKind(args[0])
			if err != nil {
				return err
			}
			toolkit, err := global.toolkit()
			if err != nil {
				return err
			}
			if root == "" {
				root = cleanRoot(toolkit, kind)
			}

			start := time.Now()
			results, err := datahandeling.Walk(cmd.Context(), root, kind, walk)
			if err != nil {
				return err
			}

			failed := datahandeling.Failed(results)
			for _, r := range failed {
				logger.WithFields(logrus.Fields{
					"source": r.Source,
					"dest":   r.Dest,
				}).Warn(r.Error)
			}

			checksum, _ := config.Checksum(results)
			artifact := database.NewSpoolArtifact(database.KindClean, root, checksum, start, time.Now())
			artifact.CleanResults = results
			persistOpts.spoolDir = spoolDirFor(persistOpts.spoolDir, toolkit.Paths.SpoolDir)
			persist(cmd.Context(), artifact, persistOpts)

			if len(results) > 0 && len(failed) == len(results) {
				return fmt.Errorf("all %d raw logs below %s failed", len(results), root)
			}
			return cmd.Context().Err()
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Directory to walk (default <data_root>/<type dir>)")
	cmd.Flags().StringVar(&walk.Encoding, "encoding", dataparser.DefaultEncoding, "Text encoding of the raw logs; UTF-16LE is tried on decode errors")
	cmd.Flags().IntVar(&walk.Jobs, "jobs", 0, "Maximum files cleaned concurrently (0 = one goroutine per file)")
	cmd.Flags().StringVar(&walk.RawDir, "raw-dir", datahandeling.DefaultRawDir, "Directory name dropped from destination paths")
	cmd.Flags().StringVar(&walk.Extension, "ext", datahandeling.DefaultExtension, "Extension of raw log files")
	addPersistFlags(cmd, &persistOpts)

	return cmd
}

func addPersistFlags(cmd *cobra.Command, opts *persistOptions) {
	cmd.Flags().StringVar(&opts.spoolDir, "spool-dir", "", "Directory for gzip JSON reports (default $"+database.SpoolDirEnv+" or paths.spool_dir)")
	cmd.Flags().BoolVar(&opts.noSpool, "no-spool", false, "Do not write a report to the spool directory")
	cmd.Flags().BoolVar(&opts.influx, "influx", false, "Export results to InfluxDB (INFLUXDB_* environment)")
}
