// Package config loads the mining run's configuration: the CLI's
// positional and flag arguments, with optional overrides from a YAML
// config file and CODEMINE_-prefixed environment variables. Grounded on
// coderisk's viper.Load idiom: set defaults, bind
// environment, read an optional file, unmarshal into a struct.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/linemine/linemine/internal/diffalign"
)

// Config holds one mining run's parameters, mirroring spec.md §6's
// command surface.
type Config struct {
	Repo         string   `mapstructure:"repo"`
	Outfile      string   `mapstructure:"outfile"`
	Exclude      []string `mapstructure:"exclude"`
	NumProcesses int      `mapstructure:"numprocesses"`
	ChunkSize    int      `mapstructure:"chunksize"`
	UseBlocks    bool     `mapstructure:"use_blocks"`
}

// Mode translates UseBlocks into the Diff Aligner's segmentation mode.
func (c Config) Mode() diffalign.Mode {
	if c.UseBlocks {
		return diffalign.Block
	}
	return diffalign.Line
}

// Default returns a Config with spec.md §6's documented defaults:
// numprocesses = hardware concurrency, chunksize = 1, blocks off.
func Default() Config {
	return Config{
		NumProcesses: runtime.NumCPU(),
		ChunkSize:    1,
		UseBlocks:    false,
	}
}

// Load builds a Config from an optional YAML file at configPath (ignored
// if empty or absent) layered under CLI-flag overrides, which the caller
// passes in the overrides map and Load applies with v.Set, and
// CODEMINE_-prefixed environment variables.
func Load(configPath string, overrides map[string]interface{}) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("numprocesses", cfg.NumProcesses)
	v.SetDefault("chunksize", cfg.ChunkSize)
	v.SetDefault("use_blocks", cfg.UseBlocks)

	v.SetEnvPrefix("CODEMINE")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", configPath, err)
			}
		}
	}

	for key, val := range overrides {
		v.Set(key, val)
	}

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

// ExcludePrefixes reads the file at path (one path prefix per line,
// spec.md §6's --exclude) and returns its non-empty, non-comment lines.
// An empty path yields no prefixes.
func ExcludePrefixes(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read exclude file %s: %w", path, err)
	}
	var prefixes []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		prefixes = append(prefixes, line)
	}
	return prefixes, nil
}

// Validate checks the invariants spec.md §6's command surface implies:
// a repository and an outfile are both required, and numeric knobs must
// be positive.
func (c Config) Validate() error {
	if c.Repo == "" {
		return fmt.Errorf("config: repo is required")
	}
	if c.Outfile == "" {
		return fmt.Errorf("config: outfile is required")
	}
	if c.NumProcesses < 1 {
		return fmt.Errorf("config: numprocesses must be >= 1, got %d", c.NumProcesses)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("config: chunksize must be >= 1, got %d", c.ChunkSize)
	}
	return nil
}
