package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jward/sema"
)

// config is the optional .sema.yml file discovered at the repo root.
type config struct {
	// DB overrides the database path (relative paths resolve against the
	// repo root). The --db flag wins over this.
	DB string `yaml:"db"`
	// Exclude lists extra directory names skipped during indexing.
	Exclude []string `yaml:"exclude"`
	// Serial disables the parallel extraction pipeline.
	Serial bool `yaml:"serial"`
}

const configName = ".sema.yml"

// loadConfig reads .sema.yml from repoRoot. A missing file is not an
// error — it yields the zero config.
func loadConfig(repoRoot string) (*config, error) {
	data, err := os.ReadFile(filepath.Join(repoRoot, configName))
	if os.IsNotExist(err) {
		return &config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", configName, err)
	}
	cfg := &config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configName, err)
	}
	return cfg, nil
}

func (c *config) engineOptions() []sema.Option {
	var opts []sema.Option
	if len(c.Exclude) > 0 {
		opts = append(opts, sema.WithExcludeDirs(c.Exclude...))
	}
	if c.Serial {
		opts = append(opts, sema.WithParallel(false))
	}
	return opts
}
