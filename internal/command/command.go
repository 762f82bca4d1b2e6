// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package command runs external programs on behalf of the extraction
// backends. The Executor interface lets tests substitute canned behavior
// for real processes.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when a command outlives its context deadline.
var ErrTimeout = errors.New("command timed out")

// waitDelay bounds how long Run waits for output pipes after the process
// has been killed.
const waitDelay = 2 * time.Second

// Executor abstracts process execution.
type Executor interface {
	// LookPath resolves a program name against PATH.
	LookPath(file string) (string, error)

	// Run executes name with args, wiring stdin and stdout. A nil stdin
	// reads from an empty input; a nil stdout discards output.
	Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// OS is the production Executor backed by os/exec.
type OS struct{}

func (OS) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (OS) Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", name, ErrTimeout)
	}
	if msg := FirstLine(stderr.String()); msg != "" {
		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// FirstLine returns the first non-blank line of s, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
