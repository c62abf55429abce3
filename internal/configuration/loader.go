package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// LoadConfiguration reads and parses the release configuration from the given
// path. If the path is a directory, all .yml/.yaml files within it are loaded
// and merged. Environment variable and SOPS substitution is applied to the
// merged result.
func LoadConfiguration(configPath string) (*Config, error) {
	fileInfo, err := os.Stat(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access configuration path: %w", err)
	}

	var config *Config
	if fileInfo.IsDir() {
		config, err = loadConfigurationFromDirectory(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		config, err = loadSingleConfigurationFile(configPath)
		if err != nil {
			return nil, err
		}
	}

	ctx := NewSubstitutionContext()
	if err := ctx.SubstituteInConfig(config); err != nil {
		return nil, fmt.Errorf("failed to substitute variables: %w", err)
	}

	return config, nil
}

// loadSingleConfigurationFile reads and parses a single configuration file
func loadSingleConfigurationFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration YAML: %w", err)
	}

	return &config, nil
}

// loadConfigurationFromDirectory loads all .yml files from a directory and merges them
func loadConfigurationFromDirectory(dirPath string) (*Config, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration directory: %w", err)
	}

	var configFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
			configFiles = append(configFiles, filepath.Join(dirPath, name))
		}
	}

	if len(configFiles) == 0 {
		return nil, fmt.Errorf("no .yml or .yaml files found in directory: %s", dirPath)
	}

	log.Debug().
		Str("directory", dirPath).
		Int("fileCount", len(configFiles)).
		Msg("Loading configuration from directory")

	var configs []*Config
	for _, filePath := range configFiles {
		config, err := loadSingleConfigurationFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", filePath, err)
		}
		configs = append(configs, config)
	}

	return mergeConfigurations(configs)
}

// mergeConfigurations merges multiple Config objects into a single Config.
// Sections are whole-section values; a section defined in more than one
// fragment is a configuration error to avoid silent precedence surprises.
func mergeConfigurations(configs []*Config) (*Config, error) {
	if len(configs) == 0 {
		return &Config{}, nil
	}

	if len(configs) == 1 {
		return configs[0], nil
	}

	merged := &Config{}

	for _, config := range configs {
		if config.Pipeline != nil {
			if merged.Pipeline != nil {
				return nil, fmt.Errorf("duplicate configuration section: pipeline")
			}
			merged.Pipeline = config.Pipeline
		}
		if config.VersionFiles != nil {
			if merged.VersionFiles != nil {
				return nil, fmt.Errorf("duplicate configuration section: versionFiles")
			}
			merged.VersionFiles = config.VersionFiles
		}
		if config.Commands != nil {
			if merged.Commands != nil {
				return nil, fmt.Errorf("duplicate configuration section: commands")
			}
			merged.Commands = config.Commands
		}
		if config.TargetActor != nil {
			if merged.TargetActor != nil {
				return nil, fmt.Errorf("duplicate configuration section: targetActor")
			}
			merged.TargetActor = config.TargetActor
		}
		if config.Notify != nil {
			if merged.Notify != nil {
				return nil, fmt.Errorf("duplicate configuration section: notify")
			}
			merged.Notify = config.Notify
		}
		if config.Telemetry != nil {
			if merged.Telemetry != nil {
				return nil, fmt.Errorf("duplicate configuration section: telemetry")
			}
			merged.Telemetry = config.Telemetry
		}
	}

	return merged, nil
}
