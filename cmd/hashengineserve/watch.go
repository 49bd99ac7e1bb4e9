// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package main

import (
	"path/filepath"

	"github.com/aristanetworks/fsnotify"
	aglog "github.com/aristanetworks/glog"

	"github.com/avifenesh/hashengine/logger"
)

// watchConfigForVerbosity reloads path on every write and applies any
// changed glog_verbosity. It never touches tunables live: a resize
// coordinator's sizing thresholds are fixed for the life of an Engine, but
// log verbosity is safe to flip at runtime. Errors are logged and do not
// stop the watch loop, mirroring how a long-running server should treat a
// momentarily-unreadable config file during an editor's save.
func watchConfigForVerbosity(path string, log logger.Logger, done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-done:
				return
			case ev := <-watcher.Events:
				if ev.Name != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := loadConfig(path)
				if err != nil {
					log.Errorf("hashengineserve: failed to reload %s: %v", path, err)
					continue
				}
				if cfg.GlogVerbosity != 0 {
					aglog.SetVGlobal(aglog.Level(cfg.GlogVerbosity))
					log.Infof("hashengineserve: reloaded %s, glog verbosity now %d", path, cfg.GlogVerbosity)
				}
			case err := <-watcher.Errors:
				log.Errorf("hashengineserve: config watch error: %v", err)
			}
		}
	}()
	return nil
}
