// Package config loads runtime settings and processing recipes from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"pixelforge/internal/pixbuf"
)

type Config struct {
	LogLevel string `yaml:"log_level"`
	Workers  int    `yaml:"workers"`
	Format   string `yaml:"format"`
	Quality  int    `yaml:"quality"`
	Seed     uint64 `yaml:"seed"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Workers:  runtime.GOMAXPROCS(0),
		Format:   "png",
		Quality:  95,
		Seed:     1,
	}
}

var formats = map[string]bool{"png": true, "jpeg": true, "tiff": true, "bmp": true, "pfr": true}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config: %v: %w", err, pixbuf.ErrInvalidInput)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Workers < 1 {
		return pixbuf.OutOfRange("config", "workers", c.Workers, "must be at least 1")
	}
	if c.Quality < 1 || c.Quality > 100 {
		return pixbuf.OutOfRange("config", "quality", c.Quality, "must be in [1, 100]")
	}
	if !formats[strings.ToLower(c.Format)] {
		return pixbuf.Invalid("config", "format", c.Format, "must be png, jpeg, tiff, bmp or pfr")
	}
	return nil
}
