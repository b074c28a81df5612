package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"unik-bench/internal/logging"

	"gopkg.in/yaml.v3"
)

// CampaignConfig describes one benchmark campaign on an ESXi hypervisor:
// which VMs are power-cycled, which guests run cyclictest and which VMs
// generate background stress.
type CampaignConfig struct {
	Campaign   CampaignInfo `yaml:"campaign"`
	Hypervisor SSHConfig    `yaml:"hypervisor"`
	Guest      SSHConfig    `yaml:"guest"`
	Unikernels []VMGroup    `yaml:"unikernels"`
	Linux      LinuxConfig  `yaml:"linux"`
	Stress     StressConfig `yaml:"stress"`
}

type CampaignInfo struct {
	Name            string        `yaml:"name"`
	Description     string        `yaml:"description"`
	LogLevel        string        `yaml:"log_level"`
	RunDuration     time.Duration `yaml:"run_duration"`
	PowerCycleDelay time.Duration `yaml:"power_cycle_delay"`
	SkipNoStress    bool          `yaml:"skip_no_stress"`
	SkipStress      bool          `yaml:"skip_stress"`
}

type SSHConfig struct {
	Host       string        `yaml:"host"`
	Port       int           `yaml:"port"`
	User       string        `yaml:"user"`
	Password   string        `yaml:"password"`
	KeyFile    string        `yaml:"key_file"`
	KnownHosts string        `yaml:"known_hosts"`
	Timeout    time.Duration `yaml:"timeout"`
}

type VMGroup struct {
	Name string `yaml:"name"`
	VMs  []int  `yaml:"vms"`
}

type LinuxConfig struct {
	Host    string      `yaml:"host"`
	Command string      `yaml:"command"`
	LogDir  string      `yaml:"log_dir"`
	Tests   []LinuxTest `yaml:"tests"`
}

type LinuxTest struct {
	VM       int `yaml:"vm"`
	Interval int `yaml:"interval"`
}

type StressConfig struct {
	Command string        `yaml:"command"`
	Settle  time.Duration `yaml:"settle"`
	VMs     []StressVM    `yaml:"vms"`
}

type StressVM struct {
	VM   int    `yaml:"vm"`
	Host string `yaml:"host"`
}

const (
	DefaultRunDuration       = 4 * time.Hour
	DefaultPowerCycleDelay   = 10 * time.Second
	DefaultStressSettle      = 10 * time.Second
	DefaultSSHPort           = 22
	DefaultCyclictestCommand = "./cyclictest -D 4h -v -i"
	DefaultStressCommand     = "stress -c 10 -m 24 --vm-bytes 256M"
)

// CyclictestCommand returns the guest command for one cyclictest interval.
func (l LinuxConfig) CyclictestCommand(interval int) string {
	return fmt.Sprintf("%s %d", l.Command, interval)
}

// LogFile is where the guest writes the raw cyclictest output of one
// interval, empty when output is discarded. The interval is part of the file
// name so the cleaner can bucket it.
func (l LinuxConfig) LogFile(interval int) string {
	if l.LogDir == "" {
		return ""
	}
	return path.Join(l.LogDir, fmt.Sprintf("cyclictest_%d.txt", interval))
}

func LoadCampaign(filepath string) (*CampaignConfig, error) {
	logger := logging.GetLogger()

	data, err := os.ReadFile(filepath)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to read campaign file")
		return nil, err
	}

	expanded := expandEnvVars(string(data))

	var config CampaignConfig
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to parse campaign file")
		return nil, err
	}

	applyCampaignDefaults(&config)

	if err := validateCampaign(&config); err != nil {
		return nil, fmt.Errorf("invalid campaign: %w", err)
	}

	return &config, nil
}

func applyCampaignDefaults(config *CampaignConfig) {
	if config.Campaign.RunDuration == 0 {
		config.Campaign.RunDuration = DefaultRunDuration
	}
	if config.Campaign.PowerCycleDelay == 0 {
		config.Campaign.PowerCycleDelay = DefaultPowerCycleDelay
	}
	if config.Hypervisor.Port == 0 {
		config.Hypervisor.Port = DefaultSSHPort
	}
	if config.Guest.Port == 0 {
		config.Guest.Port = DefaultSSHPort
	}
	if config.Linux.Command == "" {
		config.Linux.Command = DefaultCyclictestCommand
	}
	if config.Stress.Command == "" {
		config.Stress.Command = DefaultStressCommand
	}
	if config.Stress.Settle == 0 {
		config.Stress.Settle = DefaultStressSettle
	}
}

func validateCampaign(config *CampaignConfig) error {
	if config.Campaign.Name == "" {
		return fmt.Errorf("campaign name is required")
	}

	if config.Hypervisor.Host == "" || config.Hypervisor.User == "" {
		return fmt.Errorf("hypervisor host and user are required")
	}
	if config.Hypervisor.Password == "" && config.Hypervisor.KeyFile == "" {
		return fmt.Errorf("hypervisor needs a password or a key_file")
	}

	if len(config.Linux.Tests) > 0 {
		if config.Linux.Host == "" {
			return fmt.Errorf("linux.host is required when linux tests are defined")
		}
		if config.Guest.User == "" {
			return fmt.Errorf("guest user is required when linux tests are defined")
		}
	}

	if len(config.Stress.VMs) > 0 && config.Guest.User == "" {
		return fmt.Errorf("guest user is required when stress vms are defined")
	}

	for i, s := range config.Stress.VMs {
		if s.Host == "" {
			return fmt.Errorf("stress vm %d (index %d): host is required", s.VM, i)
		}
	}

	seen := make(map[string]bool)
	for _, g := range config.Unikernels {
		if g.Name == "" {
			return fmt.Errorf("unikernel group without name")
		}
		if seen[g.Name] {
			return fmt.Errorf("unikernel group %s is defined twice", g.Name)
		}
		seen[g.Name] = true
		if len(g.VMs) == 0 {
			return fmt.Errorf("unikernel group %s: at least one vm is required", g.Name)
		}
	}

	for _, t := range config.Linux.Tests {
		if t.Interval <= 0 {
			return fmt.Errorf("linux test on vm %d: interval must be greater than 0", t.VM)
		}
	}

	return nil
}
