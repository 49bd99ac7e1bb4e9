// Copyright (c) 2015 Arista Networks, Inc.  All rights reserved.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the LICENSE file.

package errs

import (
	"fmt"
	"net/http"

	"github.com/avifenesh/hashengine/hashengine"
)

type severity string

const (
	// SevNone indicates that the severity is not set
	SevNone severity = "none"
	// SevError indicates that the severity is error level
	SevError severity = "error"
	// SevWarning indicates that the severity is warning level
	SevWarning severity = "warning"
)

type tag string

const (
	// TagMissingField indicates a required configuration field was absent
	TagMissingField tag = "missing-field"
	// TagInvalidValue indicates a field held a value of the wrong shape
	TagInvalidValue tag = "invalid-value"
	// TagOutOfRange indicates a numeric field fell outside its allowed bounds
	TagOutOfRange tag = "out-of-range"
	// TagUnknownField indicates the document contained a field this version
	// of the tool does not recognize
	TagUnknownField tag = "unknown-field"
	// TagConflict indicates two fields cannot both hold their given values
	TagConflict tag = "conflict"
	// TagParseFailed indicates the document could not be parsed at all
	TagParseFailed tag = "parse-failed"
)

type infoType string

const (
	infoField infoType = "field"
	infoValue infoType = "value"
	infoOther infoType = "other-field"
)

// ConfigError reports a problem found while loading or validating a
// configuration document (YAML flags, tunables, listen addresses).
type ConfigError struct {
	Tag         tag            `json:"tag"`
	Severity    severity       `json:"severity"`
	Message     string         `json:"message"`
	Info        map[infoType]string `json:"info"`
	Description string         `json:"description"`
}

func (e *ConfigError) Error() string {
	return e.Message
}

// NewMissingField reports that a required field was absent.
func NewMissingField(field string) *ConfigError {
	return &ConfigError{
		Tag:         TagMissingField,
		Severity:    SevError,
		Message:     fmt.Sprintf("required field %q is missing", field),
		Info:        map[infoType]string{infoField: field},
		Description: "A required configuration field was not set.",
	}
}

// NewInvalidValue reports that a field held a value that cannot be parsed
// into the type the field expects.
func NewInvalidValue(field, value string) *ConfigError {
	return &ConfigError{
		Tag:         TagInvalidValue,
		Severity:    SevError,
		Message:     fmt.Sprintf("field %q has invalid value %q", field, value),
		Info:        map[infoType]string{infoField: field, infoValue: value},
		Description: "A configuration field holds a value of the wrong shape.",
	}
}

// NewOutOfRange reports that a numeric field's value fell outside its
// documented bounds.
func NewOutOfRange(field string, value, min, max interface{}) *ConfigError {
	return &ConfigError{
		Tag:      TagOutOfRange,
		Severity: SevError,
		Message: fmt.Sprintf("field %q = %v is outside the allowed range [%v, %v]",
			field, value, min, max),
		Info:        map[infoType]string{infoField: field, infoValue: fmt.Sprint(value)},
		Description: "A numeric configuration field fell outside its allowed bounds.",
	}
}

// NewUnknownField reports that the document contained a field this tool
// does not recognize.
func NewUnknownField(field string) *ConfigError {
	return &ConfigError{
		Tag:         TagUnknownField,
		Severity:    SevWarning,
		Message:     fmt.Sprintf("unknown field %q", field),
		Info:        map[infoType]string{infoField: field},
		Description: "The configuration document contained an unrecognized field.",
	}
}

// NewConflict reports that two fields cannot both hold their given values.
func NewConflict(fieldA, fieldB string) *ConfigError {
	return &ConfigError{
		Tag:         TagConflict,
		Severity:    SevError,
		Message:     fmt.Sprintf("field %q conflicts with field %q", fieldA, fieldB),
		Info:        map[infoType]string{infoField: fieldA, infoOther: fieldB},
		Description: "Two configuration fields hold mutually exclusive values.",
	}
}

// NewParseFailed reports that the document could not be parsed at all.
func NewParseFailed(reason string) *ConfigError {
	return &ConfigError{
		Tag:         TagParseFailed,
		Severity:    SevError,
		Message:     fmt.Sprintf("failed to parse configuration: %s", reason),
		Info:        map[infoType]string{},
		Description: "The configuration document could not be parsed.",
	}
}

// IsConfigError reports whether e is a *ConfigError.
func IsConfigError(e error) bool {
	_, ok := e.(*ConfigError)
	return ok
}

// MapTagToHTTPStatusCode maps a ConfigError's tag to the HTTP status code a
// config-reload endpoint should answer with.
func MapTagToHTTPStatusCode(e *ConfigError) int {
	switch e.Tag {
	case TagConflict:
		return http.StatusConflict
	case TagMissingField, TagInvalidValue, TagOutOfRange, TagUnknownField, TagParseFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// MapHashKindToHTTPStatusCode maps an engine error kind to the HTTP status
// code the key/value front door should answer with.
func MapHashKindToHTTPStatusCode(e *hashengine.HashError) int {
	switch e.Kind {
	case hashengine.KindInvalidArgument:
		return http.StatusBadRequest
	case hashengine.KindNotFound:
		return http.StatusNotFound
	case hashengine.KindNoSpace, hashengine.KindOutOfMemory:
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}
