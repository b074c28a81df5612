package host

import (
	"strings"
	"testing"
)

func TestParseKernelVersion(t *testing.T) {
	got := parseKernelVersion("Linux version 6.8.0-45-generic (buildd@lcy02) (gcc 13.2.0) #45-Ubuntu SMP")
	if got != "6.8.0-45-generic" {
		t.Fatalf("unexpected kernel version %q", got)
	}
	if got := parseKernelVersion("Linux"); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestParseCPUInfo(t *testing.T) {
	input := strings.Join([]string{
		"processor\t: 0",
		"vendor_id\t: GenuineIntel",
		"model name\t: Intel(R) Xeon(R) Gold 6130 CPU @ 2.10GHz",
		"",
		"processor\t: 1",
		"vendor_id\t: Other",
		"model name\t: Other",
	}, "\n")
	vendor, model := parseCPUInfo(strings.NewReader(input))
	if vendor != "GenuineIntel" {
		t.Fatalf("unexpected vendor %q", vendor)
	}
	if model != "Intel(R) Xeon(R) Gold 6130 CPU @ 2.10GHz" {
		t.Fatalf("unexpected model %q", model)
	}
}

func TestGetHostConfig_IsCached(t *testing.T) {
	a := GetHostConfig()
	b := GetHostConfig()
	if a != b {
		t.Fatalf("expected the same instance")
	}
	if a.TotalThreads <= 0 || a.OSInfo == "" {
		t.Fatalf("unexpected host config %+v", a)
	}
}
