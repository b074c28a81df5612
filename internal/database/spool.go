package database

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"unik-bench/internal/datahandeling"
	"unik-bench/internal/host"
	"unik-bench/internal/orchestrator"
	"unik-bench/internal/stats"
)

const (
	SpoolVersion = 1
	SpoolDirEnv  = "UNIK_BENCH_SPOOL_DIR"
)

// Artifact kinds.
const (
	KindClean    = "clean"
	KindAnalysis = "analysis"
	KindCampaign = "campaign"
)

// ProfileReport is the outcome of analysing one manifest profile.
type ProfileReport struct {
	Title   string      `json:"title"`
	Type    string      `json:"type"`
	Error   string      `json:"error,omitempty"`
	Rows    []stats.Row `json:"rows,omitempty"`
	Outputs []string    `json:"outputs,omitempty"`
}

// SpoolArtifact is everything one command produced, kept on disk so results
// survive when no InfluxDB is reachable.
type SpoolArtifact struct {
	Version int `json:"version"`

	CreatedAt time.Time `json:"created_at"`

	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Checksum string `json:"checksum"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Host          *host.HostConfig `json:"host,omitempty"`
	ConfigContent string           `json:"config_content,omitempty"`

	CleanResults []datahandeling.FileResult   `json:"clean_results,omitempty"`
	Profiles     []ProfileReport              `json:"profiles,omitempty"`
	Commands     []orchestrator.CommandResult `json:"commands,omitempty"`
}

func DefaultSpoolDir() string {
	if v := strings.TrimSpace(os.Getenv(SpoolDirEnv)); v != "" {
		return v
	}
	return "spool"
}

// NewSpoolArtifact stamps a new artifact with the current host.
func NewSpoolArtifact(kind, name, checksum string, startTime, endTime time.Time) *SpoolArtifact {
	return &SpoolArtifact{
		Version:   SpoolVersion,
		CreatedAt: time.Now(),
		Kind:      kind,
		Name:      name,
		Checksum:  checksum,
		StartTime: startTime,
		EndTime:   endTime,
		Host:      host.GetHostConfig(),
	}
}

func spoolName(artifact *SpoolArtifact) string {
	checksum := artifact.Checksum
	if checksum == "" {
		checksum = "nocsum"
	}
	kind := artifact.Kind
	if kind == "" {
		kind = "report"
	}
	return fmt.Sprintf("%s_%s_%s.json.gz",
		kind,
		artifact.CreatedAt.UTC().Format("20060102T150405Z"),
		checksum,
	)
}

// WriteSpoolArtifact writes a gzip-compressed JSON artifact to disk atomically.
// It returns the final file path.
func WriteSpoolArtifact(dir string, artifact *SpoolArtifact) (string, error) {
	if artifact == nil {
		return "", fmt.Errorf("spool artifact is nil")
	}
	if dir == "" {
		dir = DefaultSpoolDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := spoolName(artifact)
	finalPath := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, name+".tmp.*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		_ = tmp.Close()
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	gz := gzip.NewWriter(tmp)
	enc := json.NewEncoder(gz)
	enc.SetIndent("", "  ")
	if err := enc.Encode(artifact); err != nil {
		_ = gz.Close()
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", err
	}
	ok = true
	return finalPath, nil
}

func ReadSpoolArtifact(path string) (*SpoolArtifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer gz.Close()

	var artifact SpoolArtifact
	if err := json.NewDecoder(gz).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if artifact.Version != SpoolVersion {
		return nil, fmt.Errorf("unsupported spool version %d in %s", artifact.Version, path)
	}
	return &artifact, nil
}
