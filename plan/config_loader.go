package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads the pipeline configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	// Validate fields that have no safe default
	if config.Envelope != nil {
		if err := config.Envelope.Validate(); err != nil {
			return nil, fmt.Errorf("envelope: %w", err)
		}
		if config.Envelope.Height < 0 {
			return nil, fmt.Errorf("envelope.height must not be negative")
		}
	}
	if config.Tolerances.OverlapFraction < 0 || config.Tolerances.OverlapFraction > 1 {
		return nil, fmt.Errorf("tolerances.overlapFraction must be in [0,1]")
	}
	if config.Scoring.HighThreshold != 0 && config.Scoring.MediumThreshold > config.Scoring.HighThreshold {
		return nil, fmt.Errorf("scoring.mediumThreshold must not exceed scoring.highThreshold")
	}
	if config.MQTT != nil && config.MQTT.Broker == "" {
		return nil, fmt.Errorf("mqtt.broker is required when mqtt is configured")
	}

	return &config, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
