// Copyright (c) 2022 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package monitor

import (
	"net/http"

	"github.com/avifenesh/hashengine/monitor/internal/loglevel"
)

// RegisterLogLevelHandler mounts a /debug/loglevel endpoint on mux that lets
// an operator change glog verbosity (globally or per vmodule) at runtime,
// optionally reverting after a timeout.
func RegisterLogLevelHandler(mux *http.ServeMux) {
	mux.Handle("/debug/loglevel", loglevel.Handler())
}
