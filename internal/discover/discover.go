// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover expands command-line paths into the ordered list of PDF
// files a run will process.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

var (
	// ErrNotFound is returned when an argument names a path that does not exist.
	ErrNotFound = errors.New("no such file or directory")

	// ErrNotPDF is returned when an argument names a regular file that is not a PDF.
	ErrNotPDF = errors.New("not a PDF file")
)

// IsPDF reports whether path has a .pdf extension, ignoring case.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Resolve turns files and directories into a de-duplicated list of PDF
// paths in discovery order. Explicit file arguments must exist and be PDFs;
// directories are walked recursively in lexical order, skipping non-PDF
// files silently and unreadable subdirectories with a warning.
func Resolve(args []string, logger *log.Logger) ([]string, error) {
	r := resolver{seen: make(map[string]bool), logger: logger}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%s: %w", arg, ErrNotFound)
			}
			return nil, fmt.Errorf("%s: %w", arg, err)
		}

		if !info.IsDir() {
			if !IsPDF(arg) {
				return nil, fmt.Errorf("%s: %w", arg, ErrNotPDF)
			}
			r.add(arg)
			continue
		}

		if err := r.walk(arg); err != nil {
			return nil, err
		}
	}
	return r.paths, nil
}

type resolver struct {
	paths  []string
	seen   map[string]bool
	logger *log.Logger
}

// add appends path unless an equivalent path was already collected.
func (r *resolver) add(path string) {
	key := filepath.Clean(path)
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	r.paths = append(r.paths, path)
}

func (r *resolver) walk(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories (including the root) are reported and skipped.
			r.warn("skipping unreadable path", "path", path, "err", err)
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsPDF(path) {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr != nil || info.IsDir() {
				r.warn("skipping unusable link", "path", path)
				return nil
			}
		}
		r.add(path)
		return nil
	})
}

func (r *resolver) warn(msg string, keyvals ...interface{}) {
	if r.logger != nil {
		r.logger.Warn(msg, keyvals...)
	}
}
