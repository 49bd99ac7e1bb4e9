// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/avifenesh/hashengine/errs"
	"github.com/avifenesh/hashengine/hashengine"
)

// kvHandler serves a minimal REST front door over an Engine:
//
//	GET    /kv/<key>   -> 200 with the value body, or 404
//	PUT    /kv/<key>   -> 200 if the key already existed, 201 if it was new
//	POST   /kv/<key>   -> same as PUT
//	DELETE /kv/<key>   -> 200, or 404 if the key did not exist
func kvHandler(engine *hashengine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/kv/")
		if key == "" {
			http.Error(w, "missing key", http.StatusBadRequest)
			return
		}

		switch r.Method {
		case http.MethodGet:
			value, err := engine.Get([]byte(key))
			if err != nil {
				writeEngineError(w, err)
				return
			}
			w.Write(value)

		case http.MethodPut, http.MethodPost:
			value, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, fmt.Sprintf("reading body: %v", err), http.StatusBadRequest)
				return
			}
			isNew, err := engine.Put([]byte(key), value)
			if err != nil {
				writeEngineError(w, err)
				return
			}
			if isNew {
				w.WriteHeader(http.StatusCreated)
			} else {
				w.WriteHeader(http.StatusOK)
			}

		case http.MethodDelete:
			if err := engine.Delete([]byte(key)); err != nil {
				writeEngineError(w, err)
				return
			}
			w.WriteHeader(http.StatusOK)

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	var hashErr *hashengine.HashError
	if errors.As(err, &hashErr) {
		http.Error(w, hashErr.Error(), errs.MapHashKindToHTTPStatusCode(hashErr))
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// formatStats renders an Engine's Stats snapshot for the /debug/stats page.
func formatStats(s hashengine.Stats) string {
	return fmt.Sprintf("item_count=%d bucket_count=%d total_memory_bytes=%d",
		s.ItemCount, s.BucketCount, s.TotalMemory)
}
