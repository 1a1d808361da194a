package model

import "errors"

var (
	// ErrInputNotFound means the archive window contained no schedule files.
	// Callers treat it as an empty result.
	ErrInputNotFound = errors.New("no schedule files found")

	// ErrMalformedInput means a schedule record could not be decoded or a
	// required field (start time) was missing or unparseable. Fatal for a run.
	ErrMalformedInput = errors.New("malformed schedule input")

	// ErrInvalidConfiguration is returned for values rejected at a boundary:
	// config options, weekday indexes, capture options.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
