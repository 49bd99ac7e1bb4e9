// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/avifenesh/hashengine/errs"
	"github.com/avifenesh/hashengine/hashengine"
)

// config is the representation of hashengineserve's YAML config file. listen
// is required; every other field is optional. A loaded config's listen
// address and tunables replace the flag values, with unset tunables falling
// back to hashengine's own defaults; initial_buckets and glog_verbosity
// replace the flag values only when set.
type config struct {
	Listen         string  `yaml:"listen,omitempty"`
	InitialBuckets uint32  `yaml:"initial_buckets,omitempty"`
	MinBuckets     uint32  `yaml:"min_buckets,omitempty"`
	MaxBuckets     uint32  `yaml:"max_buckets,omitempty"`
	MaxLoad        float64 `yaml:"max_load,omitempty"`
	MinLoad        float64 `yaml:"min_load,omitempty"`
	MigrateBatch   int     `yaml:"migrate_batch,omitempty"`
	GlogVerbosity  int     `yaml:"glog_verbosity,omitempty"`
}

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := &config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.NewParseFailed(err.Error())
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *config) validate() error {
	if c.Listen == "" {
		return errs.NewMissingField("listen")
	}
	if c.MinBuckets != 0 && c.MaxBuckets != 0 && c.MinBuckets > c.MaxBuckets {
		return errs.NewConflict("min_buckets", "max_buckets")
	}
	if c.MaxLoad != 0 && (c.MaxLoad <= 0 || c.MaxLoad >= 1) {
		return errs.NewOutOfRange("max_load", c.MaxLoad, 0, 1)
	}
	if c.MinLoad != 0 && (c.MinLoad <= 0 || c.MinLoad >= 1) {
		return errs.NewOutOfRange("min_load", c.MinLoad, 0, 1)
	}
	if c.MigrateBatch < 0 {
		return errs.NewOutOfRange("migrate_batch", c.MigrateBatch, 0, nil)
	}
	return nil
}

// tunables builds a hashengine.Tunables from whichever fields were set,
// falling back to hashengine's defaults for the rest.
func (c *config) tunables() hashengine.Tunables {
	t := hashengine.DefaultTunables()
	if c.MinBuckets != 0 {
		t.MinBuckets = c.MinBuckets
	}
	if c.MaxBuckets != 0 {
		t.MaxBuckets = c.MaxBuckets
	}
	if c.MaxLoad != 0 {
		t.MaxLoad = c.MaxLoad
	}
	if c.MinLoad != 0 {
		t.MinLoad = c.MinLoad
	}
	if c.MigrateBatch != 0 {
		t.MigrateBatch = c.MigrateBatch
	}
	return t
}
