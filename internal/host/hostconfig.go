package host

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"unik-bench/internal/logging"

	"github.com/sirupsen/logrus"
)

// HostConfig describes the machine the toolkit runs on. It is collected once
// and stamped onto every report so results can be traced back to the host
// that cleaned or analysed them.
type HostConfig struct {
	Hostname      string `json:"hostname"`
	OSInfo        string `json:"os_info"`
	KernelVersion string `json:"kernel_version"`
	CPUVendor     string `json:"cpu_vendor"`
	CPUModel      string `json:"cpu_model"`
	TotalThreads  int    `json:"total_threads"`
}

var (
	globalHostConfig *HostConfig
	hostConfigOnce   sync.Once
)

// GetHostConfig returns the global host configuration, collecting it on
// first use.
func GetHostConfig() *HostConfig {
	hostConfigOnce.Do(func() {
		globalHostConfig = initializeHostConfig()
	})
	return globalHostConfig
}

func initializeHostConfig() *HostConfig {
	logger := logging.GetLogger()

	hc := &HostConfig{
		OSInfo:        runtime.GOOS + "/" + runtime.GOARCH,
		KernelVersion: "unknown",
		CPUVendor:     "unknown",
		CPUModel:      "unknown",
		TotalThreads:  runtime.NumCPU(),
	}

	if hostname, err := os.Hostname(); err == nil {
		hc.Hostname = hostname
	} else {
		logger.WithError(err).Warn("Failed to read hostname")
		hc.Hostname = "unknown"
	}

	if data, err := os.ReadFile("/proc/version"); err == nil {
		hc.KernelVersion = parseKernelVersion(string(data))
	}

	if f, err := os.Open("/proc/cpuinfo"); err == nil {
		vendor, model := parseCPUInfo(f)
		_ = f.Close()
		if vendor != "" {
			hc.CPUVendor = vendor
		}
		if model != "" {
			hc.CPUModel = model
		}
	}

	logger.WithFields(logrus.Fields{
		"hostname":  hc.Hostname,
		"kernel":    hc.KernelVersion,
		"cpu_model": hc.CPUModel,
	}).Debug("Host configuration initialized")

	return hc
}

func parseKernelVersion(procVersion string) string {
	fields := strings.Fields(procVersion)
	if len(fields) >= 3 {
		return fields[2]
	}
	return "unknown"
}

// parseCPUInfo returns the first vendor_id and model name of /proc/cpuinfo.
func parseCPUInfo(r io.Reader) (vendor, model string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch {
		case key == "vendor_id" && vendor == "":
			vendor = value
		case key == "model name" && model == "":
			model = value
		}
		if vendor != "" && model != "" {
			break
		}
	}
	return vendor, model
}
