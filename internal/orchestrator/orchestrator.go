// Package orchestrator drives benchmark campaigns on an ESXi hypervisor:
// VMs are power-cycled over SSH, guests run cyclictest and stress
// generators are started in between.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"unik-bench/internal/config"
	"unik-bench/internal/logging"
	"unik-bench/internal/remote"

	"github.com/sirupsen/logrus"
)

// Phases of a campaign.
const (
	PhaseNoStress = "nostress"
	PhaseStress   = "stress"
)

// Steps recorded per remote command.
const (
	StepPowerOff = "power_off"
	StepPowerOn  = "power_on"
	StepRun      = "run"
	StepStart    = "start"
)

// CommandResult records one remote command. Failures are recorded, never
// raised, so a campaign always runs to the end.
type CommandResult struct {
	Phase     string        `json:"phase,omitempty"`
	Step      string        `json:"step"`
	VM        int           `json:"vm"`
	Host      string        `json:"host"`
	Command   string        `json:"command"`
	Output    string        `json:"output,omitempty"`
	Error     string        `json:"error,omitempty"`
	Err       error         `json:"-"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

func (r CommandResult) Failed() bool {
	return r.Err != nil
}

// Failed returns the results that carry an error.
func Failed(results []CommandResult) []CommandResult {
	var failed []CommandResult
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GuestDialer returns an executor for a guest address.
type GuestDialer func(host string) remote.Executor

type Orchestrator struct {
	cfg        *config.CampaignConfig
	hypervisor remote.Executor
	guests     GuestDialer
	sleep      SleepFunc
	now        func() time.Time
	logger     *logrus.Logger
}

func New(cfg *config.CampaignConfig, hypervisor remote.Executor, guests GuestDialer) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		hypervisor: hypervisor,
		guests:     guests,
		sleep:      Sleep,
		now:        time.Now,
		logger:     logging.GetLogger(),
	}
}

// NewFromConfig connects the orchestrator to the hosts of cfg over SSH.
func NewFromConfig(cfg *config.CampaignConfig) (*Orchestrator, error) {
	hypervisor, err := remote.NewSSHClient(cfg.Hypervisor)
	if err != nil {
		return nil, fmt.Errorf("hypervisor: %w", err)
	}

	var guest *remote.SSHClient
	if cfg.Guest.User != "" {
		guest, err = remote.NewSSHClient(cfg.Guest)
		if err != nil {
			return nil, fmt.Errorf("guest: %w", err)
		}
	}

	dialer := func(host string) remote.Executor {
		if guest == nil {
			return nil
		}
		return guest.WithHost(host)
	}
	return New(cfg, hypervisor, dialer), nil
}

// WithSleep replaces the wait between steps, e.g. for dry runs.
func (o *Orchestrator) WithSleep(sleep SleepFunc) *Orchestrator {
	o.sleep = sleep
	return o
}

func (o *Orchestrator) exec(ex remote.Executor, step string, vm int, command string, run func() (string, error)) CommandResult {
	result := CommandResult{
		Step:      step,
		VM:        vm,
		Command:   command,
		StartedAt: o.now(),
	}
	if ex != nil {
		result.Host = ex.Host()
	}

	var output string
	var err error
	if ex == nil {
		err = fmt.Errorf("no executor for step %s", step)
	} else {
		output, err = run()
	}
	result.Duration = o.now().Sub(result.StartedAt)
	result.Output = output

	fields := logrus.Fields{
		"step":    step,
		"vm":      vm,
		"host":    result.Host,
		"command": command,
	}
	if err != nil {
		result.Err = err
		result.Error = err.Error()
		o.logger.WithFields(fields).WithError(err).Error("Remote command failed, continuing")
	} else {
		o.logger.WithFields(fields).Info("Remote command executed")
	}
	return result
}

// PowerOff turns vm off on the hypervisor.
func (o *Orchestrator) PowerOff(ctx context.Context, vm int) CommandResult {
	command := fmt.Sprintf("vim-cmd vmsvc/power.off %d", vm)
	return o.exec(o.hypervisor, StepPowerOff, vm, command, func() (string, error) {
		return o.hypervisor.Run(ctx, command)
	})
}

// PowerOn power-cycles vm: it is turned off first so every run starts
// from a fresh boot.
func (o *Orchestrator) PowerOn(ctx context.Context, vm int) ([]CommandResult, error) {
	results := []CommandResult{o.PowerOff(ctx, vm)}
	if err := o.sleep(ctx, o.cfg.Campaign.PowerCycleDelay); err != nil {
		return results, err
	}

	command := fmt.Sprintf("vim-cmd vmsvc/power.on %d", vm)
	results = append(results, o.exec(o.hypervisor, StepPowerOn, vm, command, func() (string, error) {
		return o.hypervisor.Run(ctx, command)
	}))
	return results, nil
}

// RunVMTest boots each vm in turn, lets it run for d and turns it off.
func (o *Orchestrator) RunVMTest(ctx context.Context, vms []int, d time.Duration) ([]CommandResult, error) {
	var results []CommandResult
	for _, vm := range vms {
		on, err := o.PowerOn(ctx, vm)
		results = append(results, on...)
		if err != nil {
			return results, err
		}
		if err := o.sleep(ctx, d); err != nil {
			return results, err
		}
		results = append(results, o.PowerOff(ctx, vm))
	}
	return results, nil
}

// RunLinux boots vm, starts command on host, waits and optionally turns the
// vm off again.
func (o *Orchestrator) RunLinux(ctx context.Context, vm int, host, command, output string, wait time.Duration, turnOff bool) ([]CommandResult, error) {
	results, err := o.PowerOn(ctx, vm)
	if err != nil {
		return results, err
	}

	guest := o.guests(host)
	results = append(results, o.exec(guest, StepStart, vm, command, func() (string, error) {
		return "", guest.Start(ctx, command, output)
	}))

	if err := o.sleep(ctx, wait); err != nil {
		return results, err
	}
	if turnOff {
		results = append(results, o.PowerOff(ctx, vm))
	}
	return results, nil
}

// RunLinuxTest runs one cyclictest interval on the Linux guest.
func (o *Orchestrator) RunLinuxTest(ctx context.Context, vm, interval int) ([]CommandResult, error) {
	linux := o.cfg.Linux
	return o.RunLinux(ctx, vm, linux.Host, linux.CyclictestCommand(interval), linux.LogFile(interval), o.cfg.Campaign.RunDuration, true)
}

// RunStressTest starts the stress generator on vm and leaves it running.
func (o *Orchestrator) RunStressTest(ctx context.Context, vm int, host string) ([]CommandResult, error) {
	return o.RunLinux(ctx, vm, host, o.cfg.Stress.Command, "", o.cfg.Stress.Settle, false)
}

// RunCampaign executes the full plan: every unikernel group and Linux test
// without stress, then the stress VMs are started and the same tests run
// again. It returns every command result; the error is only set when ctx
// ends the campaign early.
func (o *Orchestrator) RunCampaign(ctx context.Context) ([]CommandResult, error) {
	var all []CommandResult
	record := func(phase string, results []CommandResult) {
		for i := range results {
			results[i].Phase = phase
		}
		all = append(all, results...)
	}

	campaign := o.cfg.Campaign
	o.logger.WithFields(logrus.Fields{
		"campaign":   campaign.Name,
		"unikernels": len(o.cfg.Unikernels),
		"linux":      len(o.cfg.Linux.Tests),
		"stress_vms": len(o.cfg.Stress.VMs),
	}).Info("Starting campaign")

	if !campaign.SkipNoStress {
		results, err := o.runTests(ctx)
		record(PhaseNoStress, results)
		if err != nil {
			return all, err
		}
	}

	if !campaign.SkipStress {
		for _, s := range o.cfg.Stress.VMs {
			results, err := o.RunStressTest(ctx, s.VM, s.Host)
			record(PhaseStress, results)
			if err != nil {
				return all, err
			}
		}
		results, err := o.runTests(ctx)
		record(PhaseStress, results)
		if err != nil {
			return all, err
		}
	}

	o.logger.WithFields(logrus.Fields{
		"campaign": campaign.Name,
		"commands": len(all),
		"failed":   len(Failed(all)),
	}).Info("Campaign finished")
	return all, nil
}

func (o *Orchestrator) runTests(ctx context.Context) ([]CommandResult, error) {
	var all []CommandResult
	for _, group := range o.cfg.Unikernels {
		o.logger.WithField("group", group.Name).Info("Running unikernel group")
		results, err := o.RunVMTest(ctx, group.VMs, o.cfg.Campaign.RunDuration)
		all = append(all, results...)
		if err != nil {
			return all, err
		}
	}
	for _, test := range o.cfg.Linux.Tests {
		results, err := o.RunLinuxTest(ctx, test.VM, test.Interval)
		all = append(all, results...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}
