package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReaderConfig selects the capture source and consumption mode. The fields
// mirror pcap.Options; exactly one of file/interface must be set.
type ReaderConfig struct {
	File            string `yaml:"file"`
	Interface       string `yaml:"interface"`
	Mode            string `yaml:"mode"`
	BuildFlowTable  bool   `yaml:"build_flow_table"`
	SortByTimestamp bool   `yaml:"sort_by_timestamp"`
	Verbose         bool   `yaml:"verbose"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Reader ReaderConfig `yaml:"reader"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return &cfg, nil
}
