package orchestrator

import (
	"context"
	"io"
	"time"

	"unik-bench/internal/config"
	"unik-bench/internal/remote"

	"github.com/sirupsen/logrus"
)

// DryRunExecutor accepts every command without contacting a host.
type DryRunExecutor struct {
	host string
}

func NewDryRunExecutor(host string) *DryRunExecutor {
	return &DryRunExecutor{host: host}
}

func (d *DryRunExecutor) Host() string { return d.host }

func (d *DryRunExecutor) Run(ctx context.Context, command string) (string, error) {
	return "", ctx.Err()
}

func (d *DryRunExecutor) Start(ctx context.Context, command, output string) error {
	return ctx.Err()
}

// Plan walks the campaign without executing anything and returns the
// commands in order together with the accumulated waiting time.
func Plan(ctx context.Context, cfg *config.CampaignConfig) ([]CommandResult, time.Duration, error) {
	var total time.Duration

	o := New(cfg, NewDryRunExecutor(cfg.Hypervisor.Host), func(host string) remote.Executor {
		return NewDryRunExecutor(host)
	})
	o.WithSleep(func(ctx context.Context, d time.Duration) error {
		total += d
		return ctx.Err()
	})
	// the caller prints the plan
	o.logger = logrus.New()
	o.logger.SetOutput(io.Discard)

	results, err := o.RunCampaign(ctx)
	return results, total, err
}
