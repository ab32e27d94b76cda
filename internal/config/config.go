package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models binsight.yml.
type Config struct {
	Station struct {
		ID string `yaml:"id"`
	} `yaml:"station"`
	Classifier struct {
		Model     string `yaml:"model"`
		MaxTokens int    `yaml:"max_tokens"`
	} `yaml:"classifier"`
	Mail struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		From     string `yaml:"from"`
		NotifyTo string `yaml:"notify_to"`
	} `yaml:"mail"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with binsight config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Station.ID == "" {
		return fmt.Errorf("config.station.id is required")
	}
	if c.Classifier.Model == "" {
		return fmt.Errorf("config.classifier.model is required")
	}
	if c.Classifier.MaxTokens < 0 {
		return fmt.Errorf("config.classifier.max_tokens must not be negative")
	}
	if c.Mail.Host != "" {
		if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
			return fmt.Errorf("config.mail.port must be a valid port")
		}
		if c.Mail.From == "" {
			return fmt.Errorf("config.mail.from is required when mail.host is set")
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "binsight.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault(stationID string) string {
	return fmt.Sprintf(defaultTemplate, stationID)
}

// Default returns the default Config struct for a station.
func Default(stationID string) *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(fmt.Sprintf(defaultTemplate, stationID)), &cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `station:
  id: %s

classifier:
  model: claude-sonnet-4-5-20250929
  max_tokens: 64

mail:
  host: ""
  port: 465
  username: ""
  from: ""
  notify_to: ""
`
