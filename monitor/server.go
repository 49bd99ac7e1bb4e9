// Copyright (C) 2015  Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package monitor provides an embedded HTTP server to expose
// metrics for monitoring
package monitor

import (
	"expvar"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
)

// Server represents a monitoring server
type Server interface {
	Run()
	// SetStatsFunc registers a callback invoked to render /debug/stats.
	// Calling it more than once replaces the previous callback.
	SetStatsFunc(f func() string)
	// Mux returns the server's ServeMux so callers can register additional
	// handlers (a Prometheus /metrics endpoint, a key/value front door)
	// before Run is called.
	Mux() *http.ServeMux
}

// server contains information for the monitoring server
type server struct {
	// Server name e.g. host[:port]
	serverName string
	mux        *http.ServeMux
	statsFunc  func() string
}

// NewMonitorServer creates a new server struct
func NewMonitorServer(serverName string) Server {
	s := &server{
		serverName: serverName,
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc("/debug", s.debugHandler)
	s.mux.HandleFunc("/debug/stats", s.statsHandler)
	s.mux.Handle("/debug/vars", expvar.Handler())
	s.mux.HandleFunc("/debug/pprof/", pprof.Index)
	RegisterLogLevelHandler(s.mux)
	return s
}

func (s *server) Mux() *http.ServeMux {
	return s.mux
}

func (s *server) SetStatsFunc(f func() string) {
	s.statsFunc = f
}

func (s *server) debugHandler(w http.ResponseWriter, r *http.Request) {
	indexTmpl := `<html>
	<head>
	<title>/debug</title>
	</head>
	<body>
	<p>/debug</p>
	<div><a href="/debug/vars">vars</a></div>
	<div><a href="/debug/stats">stats</a></div>
	<div><a href="/debug/pprof/">pprof</a></div>
	<div><a href="/metrics">metrics</a></div>
	</body>
	</html>
	`
	fmt.Fprint(w, indexTmpl)
}

func (s *server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if s.statsFunc == nil {
		http.Error(w, "no stats function registered", http.StatusNotImplemented)
		return
	}
	fmt.Fprintln(w, s.statsFunc())
}

// Run sets up the HTTP server and any handlers
func (s *server) Run() {
	if err := http.ListenAndServe(s.serverName, s.mux); err != nil {
		log.Printf("Could not start monitor server: %s", err)
	}
}
