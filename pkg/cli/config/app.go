package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// AppConfig represents pipeline tuning loaded from a TOML file. Zero
// values mean "use the built-in default".
type AppConfig struct {
	path string

	Chunking   Chunking   `toml:"chunking"`
	Summarizer Summarizer `toml:"summarizer"`
	Agent      Agent      `toml:"agent"`
	Aggregator Aggregator `toml:"aggregator"`
}

// Chunking tunes the text splitter
type Chunking struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// Summarizer tunes the recursive reduction
type Summarizer struct {
	BatchSize   int `toml:"batch_size"`
	Concurrency int `toml:"concurrency"`
	ThemeCount  int `toml:"theme_count"`
}

// Agent tunes the reasoning loop
type Agent struct {
	MaxSteps int `toml:"max_steps"`
}

// Aggregator tunes the global theme report
type Aggregator struct {
	ScrollLimit int `toml:"scroll_limit"`
}

// Validate checks the loaded tuning values
func (c *AppConfig) Validate() error {
	if c.Chunking.Size < 0 || c.Chunking.Overlap < 0 {
		return goerr.New("chunking values must not be negative",
			goerr.V("size", c.Chunking.Size), goerr.V("overlap", c.Chunking.Overlap))
	}
	if c.Chunking.Size > 0 && c.Chunking.Overlap >= c.Chunking.Size {
		return goerr.New("chunk overlap must be smaller than chunk size",
			goerr.V("size", c.Chunking.Size), goerr.V("overlap", c.Chunking.Overlap))
	}
	if c.Summarizer.BatchSize < 0 || c.Summarizer.Concurrency < 0 || c.Summarizer.ThemeCount < 0 {
		return goerr.New("summarizer values must not be negative")
	}
	if c.Agent.MaxSteps < 0 {
		return goerr.New("agent max_steps must not be negative", goerr.V("max_steps", c.Agent.MaxSteps))
	}
	if c.Aggregator.ScrollLimit < 0 {
		return goerr.New("aggregator scroll_limit must not be negative", goerr.V("scroll_limit", c.Aggregator.ScrollLimit))
	}
	return nil
}

// Flags returns CLI flags for the application configuration
func (c *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to TOML tuning configuration file",
			Sources:     cli.EnvVars("MNEMOSYNE_CONFIG"),
			Destination: &c.path,
		},
	}
}

// Configure loads and validates the TOML file when one is configured.
func (c *AppConfig) Configure() error {
	if c.path == "" {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", c.path))
	}

	if err := toml.Unmarshal(data, c); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", c.path))
	}

	if err := c.Validate(); err != nil {
		return goerr.Wrap(err, "invalid config file", goerr.V("path", c.path))
	}

	return nil
}
