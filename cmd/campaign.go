package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"unik-bench/internal/config"
	"unik-bench/internal/database"
	"unik-bench/internal/logging"
	"unik-bench/internal/orchestrator"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newCampaignCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Run benchmark campaigns on an ESXi hypervisor",
	}
	cmd.AddCommand(newCampaignRunCmd(global))
	cmd.AddCommand(newCampaignValidateCmd())
	return cmd
}

func loadCampaign(path string) (*config.CampaignConfig, error) {
	cfg, err := config.LoadCampaign(path)
	if err != nil {
		return nil, err
	}
	if cfg.Campaign.LogLevel != "" {
		if err := logging.SetRemoteLogLevel(cfg.Campaign.LogLevel); err != nil {
			return nil, fmt.Errorf("invalid campaign log level: %w", err)
		}
	}
	return cfg, nil
}

func newCampaignRunCmd(global *globalOptions) *cobra.Command {
	var dryRun bool
	var persistOpts persistOptions

	cmd := &cobra.Command{
		Use:   "run <campaign.yml>",
		Short: "Run every phase of a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger()
			ctx := cmd.Context()

			cfg, err := loadCampaign(args[0])
			if err != nil {
				return err
			}

			if dryRun {
				results, total, err := orchestrator.Plan(ctx, cfg)
				if err != nil {
					return err
				}
				writeCommandTable(cmd.OutOrStdout(), results)
				fmt.Fprintf(cmd.OutOrStdout(), "%d commands, estimated duration %s\n", len(results), total)
				return nil
			}

			o, err := orchestrator.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			results, runErr := o.RunCampaign(ctx)

			failed := orchestrator.Failed(results)
			logger.WithFields(logrus.Fields{
				"campaign": cfg.Campaign.Name,
				"commands": len(results),
				"failed":   len(failed),
				"duration": time.Since(start).Round(time.Second),
			}).Info("Campaign finished")

			checksum, _ := config.Checksum(cfg.Campaign)
			artifact := database.NewSpoolArtifact(database.KindCampaign, cfg.Campaign.Name, checksum, start, time.Now())
			artifact.Commands = results
			toolkit, err := global.toolkit()
			configured := ""
			if err == nil {
				configured = toolkit.Paths.SpoolDir
			}
			persistOpts.spoolDir = spoolDirFor(persistOpts.spoolDir, configured)
			persist(ctx, artifact, persistOpts)

			if len(failed) > 0 {
				writeCommandTable(cmd.OutOrStdout(), failed)
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the commands of the campaign without connecting anywhere")
	addPersistFlags(cmd, &persistOpts)
	return cmd
}

func newCampaignValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <campaign.yml>",
		Short: "Validate a campaign file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger()

			cfg, err := loadCampaign(args[0])
			if err != nil {
				logger.WithField("campaign_file", args[0]).WithError(err).Error("Campaign validation failed")
				return err
			}
			results, total, err := orchestrator.Plan(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"campaign_file": args[0],
				"commands":      len(results),
				"duration":      total,
			}).Info("Campaign is valid")
			return nil
		},
	}
}

func newVMCmd() *cobra.Command {
	var campaignFile string

	cmd := &cobra.Command{
		Use:   "vm on|off <id>",
		Short: "Power a single VM on or off",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid vm id %q: %w", args[1], err)
			}
			cfg, err := loadCampaign(campaignFile)
			if err != nil {
				return err
			}
			o, err := orchestrator.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			var results []orchestrator.CommandResult
			switch args[0] {
			case "on":
				results, err = o.PowerOn(cmd.Context(), vm)
			case "off":
				results = []orchestrator.CommandResult{o.PowerOff(cmd.Context(), vm)}
			default:
				return fmt.Errorf("invalid action %q, valid options are 'on' or 'off'", args[0])
			}
			if err != nil {
				return err
			}
			if failed := orchestrator.Failed(results); len(failed) > 0 {
				return failed[0].Err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&campaignFile, "campaign", "", "Campaign file holding the hypervisor connection")
	cmd.MarkFlagRequired("campaign")
	return cmd
}

func writeCommandTable(w io.Writer, results []orchestrator.CommandResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Phase", "Step", "VM", "Host", "Command", "Error"})
	for _, r := range results {
		table.Append([]string{r.Phase, r.Step, strconv.Itoa(r.VM), r.Host, r.Command, r.Error})
	}
	table.Render()
}
