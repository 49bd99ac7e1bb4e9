// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Command hashengineserve exposes a hashengine.Engine as a small HTTP
// key/value service, alongside Prometheus metrics and the usual /debug
// endpoints.
package main

import (
	"expvar"

	rawglog "github.com/aristanetworks/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	hglog "github.com/avifenesh/hashengine/glog"
	"github.com/avifenesh/hashengine/hashengine"
	"github.com/avifenesh/hashengine/logger"
	"github.com/avifenesh/hashengine/monitor"
)

var (
	listenAddr     = flag.String("listen", ":8080", "address to serve the HTTP front door and /debug endpoints on")
	configPath     = flag.String("config", "", "optional YAML config file; see config.go for the schema")
	initialBuckets = flag.Uint32("initial-buckets", hashengine.DefaultMinBuckets, "initial bucket count")
	minBuckets     = flag.Uint32("min-buckets", hashengine.DefaultMinBuckets, "lower bound a shrink will not cross")
	maxBuckets     = flag.Uint32("max-buckets", hashengine.DefaultMaxBuckets, "upper bound a grow will not cross")
	maxLoad        = flag.Float64("max-load", hashengine.DefaultMaxLoad, "load factor that triggers a grow")
	minLoad        = flag.Float64("min-load", hashengine.DefaultMinLoad, "load factor that triggers a shrink")
	migrateBatch   = flag.Int("migrate-batch", hashengine.DefaultMigrateBatch, "buckets migrated per Put/Get/Delete while a resize is in flight")
	glogVerbosity  = flag.Int("glog-v", 0, "initial glog verbosity")
)

func main() {
	flag.Parse()

	tunables := hashengine.Tunables{
		MinBuckets:   *minBuckets,
		MaxBuckets:   *maxBuckets,
		MaxLoad:      *maxLoad,
		MinLoad:      *minLoad,
		MigrateBatch: *migrateBatch,
	}
	addr := *listenAddr
	verbosity := *glogVerbosity
	buckets := *initialBuckets

	if *configPath != "" {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			fatalf("loading config: %v", err)
		}
		tunables = cfg.tunables()
		addr = cfg.Listen
		if cfg.GlogVerbosity != 0 {
			verbosity = cfg.GlogVerbosity
		}
		if cfg.InitialBuckets != 0 {
			buckets = cfg.InitialBuckets
		}
	}

	if verbosity != 0 {
		rawglog.SetVGlobal(rawglog.Level(verbosity))
	}
	log := &hglog.Glog{}

	registry := prometheus.NewRegistry()
	engine, err := hashengine.New(buckets,
		hashengine.WithTunables(tunables),
		hashengine.WithLogger(log),
		hashengine.WithMetrics(registry),
	)
	if err != nil {
		fatalf("constructing engine: %v", err)
	}

	publishExpvars(engine)

	srv := monitor.NewMonitorServer(addr)
	mux := srv.Mux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/kv/", kvHandler(engine))
	srv.SetStatsFunc(func() string {
		stats := engine.Stats()
		return formatStats(stats) + "\n" + monitor.VarsToString()
	})

	if *configPath != "" {
		done := make(chan struct{})
		if err := watchConfigForVerbosity(*configPath, log, done); err != nil {
			log.Errorf("hashengineserve: could not watch %s: %v", *configPath, err)
		}
	}

	log.Infof("hashengineserve: listening on %s", addr)
	srv.Run()
}

func fatalf(format string, args ...interface{}) {
	var l logger.Logger = &hglog.Glog{}
	l.Fatalf(format, args...)
}

// publishExpvars registers the engine's live counters as expvar.Funcs, so
// GET /debug/vars reflects the current table alongside the Prometheus view.
func publishExpvars(engine *hashengine.Engine) {
	expvar.Publish("item_count", expvar.Func(func() interface{} {
		return engine.Stats().ItemCount
	}))
	expvar.Publish("bucket_count", expvar.Func(func() interface{} {
		return engine.Stats().BucketCount
	}))
	expvar.Publish("total_memory_bytes", expvar.Func(func() interface{} {
		return engine.Stats().TotalMemory
	}))
	expvar.Publish("migration_progress_ratio", expvar.Func(func() interface{} {
		return engine.MigrationProgress()
	}))
}
