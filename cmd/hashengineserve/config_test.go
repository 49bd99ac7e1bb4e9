// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/avifenesh/hashengine/hashengine"
	"github.com/avifenesh/hashengine/test"
)

func writeFixture(t *testing.T, dir, contents string) string {
	t.Helper()
	fixture := filepath.Join(dir, "fixture.yaml")
	if err := os.WriteFile(fixture, []byte(contents), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return fixture
}

func TestLoadConfigValid(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "listen: :9090\nmax_load: 0.8\nmin_load: 0.2\n")

	// Exercise CopyFile by loading a second copy of the fixture from a
	// different path and checking both parse identically.
	copyPath := filepath.Join(dir, "copy.yaml")
	test.CopyFile(t, path, copyPath)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	cfgCopy, err := loadConfig(copyPath)
	if err != nil {
		t.Fatalf("loadConfig(copy): %v", err)
	}
	if diff := test.Diff(*cfg, *cfgCopy); diff != "" {
		t.Fatalf("copied config differs from original: %s", diff)
	}
	if cfg.Listen != ":9090" {
		t.Fatalf("Listen = %q, want :9090", cfg.Listen)
	}
}

func TestLoadConfigMissingListen(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "max_load: 0.8\n")
	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected an error for a config missing listen")
	}
}

func TestConfigTunablesFallsBackToDefaults(t *testing.T) {
	cfg := &config{Listen: ":9090"}
	got := cfg.tunables()
	want := hashengine.DefaultTunables()
	if test.Diff(got, want) != "" {
		t.Fatalf("tunables() = %+v, want defaults %+v", got, want)
	}
}
