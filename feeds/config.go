package feeds

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source kinds understood by NewSource.
const (
	SourceKindOTX  = "otx"
	SourceKindNVD  = "nvd"
	SourceKindCERT = "cert"
)

// Config declares the upstream sources to fetch from.
type Config struct {
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig declares one upstream source. URL overrides the client's
// default endpoint when set, which also lets tests point a source at a
// local server. APIKeyEnv names the environment variable holding the
// source's API key so keys stay out of the config file.
type SourceConfig struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	URL       string `yaml:"url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	MaxItems  int    `yaml:"max_items,omitempty"`
}

// LoadConfig reads and validates a feeds configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feeds config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing feeds config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every declared source is usable.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("feeds config: no sources declared")
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, sc := range c.Sources {
		if sc.Name == "" {
			return fmt.Errorf("feeds config: source %d has no name", i)
		}
		if seen[sc.Name] {
			return fmt.Errorf("feeds config: duplicate source name %q", sc.Name)
		}
		seen[sc.Name] = true

		switch sc.Kind {
		case SourceKindOTX, SourceKindNVD:
		case SourceKindCERT:
			if sc.URL == "" {
				return fmt.Errorf("feeds config: source %q requires a url", sc.Name)
			}
		default:
			return fmt.Errorf("feeds config: source %q: %w: %q", sc.Name, ErrUnknownSourceKind, sc.Kind)
		}

		if sc.MaxItems < 0 {
			return fmt.Errorf("feeds config: source %q has negative max_items", sc.Name)
		}
	}
	return nil
}

// FindSource returns the configuration for a named source.
func (c *Config) FindSource(name string) (SourceConfig, error) {
	for _, sc := range c.Sources {
		if sc.Name == name {
			return sc, nil
		}
	}
	return SourceConfig{}, fmt.Errorf("%w: %q", ErrSourceNotFound, name)
}
