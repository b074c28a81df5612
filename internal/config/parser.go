package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"unik-bench/internal/logging"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// LoadToolkit reads a toolkit configuration. Values present in the file
// override the defaults; an empty path returns the defaults.
func LoadToolkit(filepath string) (*Toolkit, error) {
	logger := logging.GetLogger()

	config := Default()
	if filepath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to read config file")
		return nil, err
	}

	expanded := expandEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to parse config file")
		return nil, err
	}

	if err := validateToolkit(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})
}

func validateToolkit(config *Toolkit) error {
	if config.Paths.DataRoot == "" {
		return fmt.Errorf("paths.data_root is required")
	}

	dirs := config.Paths.TypeDirs
	if dirs.Latency == "" || dirs.Boot == "" || dirs.CPU == "" || dirs.Memory == "" {
		return fmt.Errorf("incomplete paths.types configuration")
	}

	if config.Paths.Plots == "" {
		return fmt.Errorf("paths.plots is required")
	}

	for source, hex := range config.Sources {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("source %s: invalid color %q: %w", source, hex, err)
		}
	}

	for env, style := range config.Environments {
		for _, d := range style.Dashes {
			if d <= 0 {
				return fmt.Errorf("environment %s: dash lengths must be positive", env)
			}
		}
	}

	return nil
}
