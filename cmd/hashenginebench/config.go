// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/avifenesh/hashengine/errs"
)

// config is the representation of hashenginebench's YAML config file. A
// loaded config replaces the flag values entirely; fields it leaves unset
// take the built-in defaults from applyDefaults, not the flag values.
type config struct {
	Workers      int     `yaml:"workers,omitempty"`
	OpsPerWorker int     `yaml:"ops_per_worker,omitempty"`
	KeySpace     int     `yaml:"key_space,omitempty"`
	ReadRatio    float64 `yaml:"read_ratio,omitempty"`
	InitialBuckets uint32 `yaml:"initial_buckets,omitempty"`
	MaxInflight  int64   `yaml:"max_inflight,omitempty"`
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
	if c.Workers < 0 {
		return errs.NewOutOfRange("workers", c.Workers, 0, nil)
	}
	if c.OpsPerWorker < 0 {
		return errs.NewOutOfRange("ops_per_worker", c.OpsPerWorker, 0, nil)
	}
	if c.ReadRatio != 0 && (c.ReadRatio < 0 || c.ReadRatio > 1) {
		return errs.NewOutOfRange("read_ratio", c.ReadRatio, 0, 1)
	}
	if c.MaxInflight < 0 {
		return errs.NewOutOfRange("max_inflight", c.MaxInflight, 0, nil)
	}
	return nil
}
