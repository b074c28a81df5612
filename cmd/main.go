package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"unik-bench/internal/config"
	"unik-bench/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const Version = "1.0.0"

func loadEnvironment() {
	logger := logging.GetLogger()

	// Try to load .env file from current directory
	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
		} else {
			logger.WithField("file", envFile).Debug("Loaded environment variables")
		}
	} else {
		// Try to load from the application directory
		if execPath, err := os.Executable(); err == nil {
			appDir := filepath.Dir(execPath)
			envFile = filepath.Join(appDir, ".env")
			if _, err := os.Stat(envFile); err == nil {
				if err := godotenv.Load(envFile); err != nil {
					logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
				} else {
					logger.WithField("file", envFile).Debug("Loaded environment variables")
				}
			}
		}
	}
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile string
	logLevel   string
}

// toolkit loads the toolkit configuration. A log level from the file only
// applies when --log-level was not given.
func (g *globalOptions) toolkit() (*config.Toolkit, error) {
	toolkit, err := config.LoadToolkit(g.configFile)
	if err != nil {
		return nil, err
	}
	if g.logLevel == "" && toolkit.LogLevel != "" {
		if err := logging.SetLogLevel(toolkit.LogLevel); err != nil {
			return nil, fmt.Errorf("invalid log level in %s: %w", g.configFile, err)
		}
	}
	return toolkit, nil
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "unik-bench",
		Short:        "Unikernel benchmarking toolkit",
		Long:         "Cleans cyclictest and boot time logs, renders comparison plots and statistics, extracts syscalls from binaries and drives benchmark campaigns on ESXi",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logLevel != "" {
				if err := logging.SetLogLevel(opts.logLevel); err != nil {
					return fmt.Errorf("invalid log level: %w", err)
				}
				if err := logging.SetRemoteLogLevel(opts.logLevel); err != nil {
					return fmt.Errorf("invalid log level: %w", err)
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to toolkit configuration file")

	rootCmd.AddCommand(newCleanCmd(opts))
	rootCmd.AddCommand(newAnalyzeCmd(opts))
	for _, fn := range analysisFunctions {
		rootCmd.AddCommand(newAnalysisShorthandCmd(opts, fn))
	}
	rootCmd.AddCommand(newSyscallsCmd())
	rootCmd.AddCommand(newCampaignCmd(opts))
	rootCmd.AddCommand(newVMCmd())

	return rootCmd
}

func main() {
	logger := logging.GetLogger()

	loadEnvironment()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(&globalOptions{})
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logger.WithError(err).Fatal("Command execution failed")
	}
}
