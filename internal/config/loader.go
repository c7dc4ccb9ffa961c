package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Load reads the configuration file at path over the defaults, then applies
// environment overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	// Credentials come from the environment only.
	key := os.Getenv("FIREWORKS_API_KEY")
	cfg.LLM.APIKey = key
	cfg.Embedding.APIKey = key

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}
