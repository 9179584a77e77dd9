package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional on-disk CLI configuration. Flags override it.
type Config struct {
	// DB is the path of the sqlite database file.
	DB string `yaml:"db"`

	// Codec names the ent codec for new database files.
	Codec string `yaml:"codec"`

	Snapshots SnapshotConfig `yaml:"snapshots"`
}

// SnapshotConfig configures where snapshots go and how they are written.
type SnapshotConfig struct {
	Dir                  string `yaml:"dir"`
	Compression          string `yaml:"compression"`
	RateLimitBytesPerSec int    `yaml:"rate_limit"`
}

func defaultConfig() Config {
	return Config{
		DB: "entdb.sqlite",
		Snapshots: SnapshotConfig{
			Dir:         "snapshots",
			Compression: "zstd",
		},
	}
}

// loadConfig reads the YAML config at path. A missing file at the default
// path is fine; a missing file named explicitly is an error.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
