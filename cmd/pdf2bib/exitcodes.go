// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import "errors"

// Process exit codes.
const (
	exitOK      = 0
	exitPartial = 1 // some files produced no entry
	exitUsage   = 2 // configuration, tool or output error
	exitBadPath = 3 // missing or non-PDF path argument
)

// exitError carries the process exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error { return &exitError{code: exitUsage, err: err} }

func pathError(err error) error { return &exitError{code: exitBadPath, err: err} }

// exitCode maps an error returned by the root command to an exit code.
// Errors that carry no code are usage errors.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return exitUsage
}
