// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container detects a container runtime and runs images with the
// PDF piped through stdin. It backs the markitdown extraction backend.
package container

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/pdf2bib/internal/command"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Runtime provides container operations: checking availability, verifying
// images, and running containers.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime responds to an info command.
	// A binary missing from PATH fails that command.
	Available(ctx context.Context) bool

	// ImageExists checks whether the named image exists locally.
	ImageExists(ctx context.Context, image string) error

	// Run executes a container with the given image, piping stdin and stdout.
	Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error
}

// runtime implements Runtime for a specific container binary. Docker and
// Podman differ only in binary name and the image check subcommand.
type runtime struct {
	bin           string
	imageCheckCmd []string
	exec          command.Executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available(ctx context.Context) bool {
	return r.exec.Run(ctx, r.bin, []string{"info"}, nil, nil) == nil
}

func (r *runtime) ImageExists(ctx context.Context, image string) error {
	args := make([]string, 0, len(r.imageCheckCmd)+1)
	args = append(args, r.imageCheckCmd...)
	args = append(args, image)

	if err := r.exec.Run(ctx, r.bin, args, nil, nil); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	args := []string{"run", "--rm", "-i", "--network=none", image}
	if err := r.exec.Run(ctx, r.bin, args, stdin, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return nil
}

func newDockerRuntime(exec command.Executor) *runtime {
	return &runtime{bin: binDocker, imageCheckCmd: []string{"image", "inspect"}, exec: exec}
}

func newPodmanRuntime(exec command.Executor) *runtime {
	return &runtime{bin: binPodman, imageCheckCmd: []string{"image", "exists"}, exec: exec}
}

// DetectRuntime tries docker first and falls back to podman.
func DetectRuntime(ctx context.Context, exec command.Executor) (Runtime, error) {
	if exec == nil {
		exec = command.OS{}
	}
	if docker := newDockerRuntime(exec); docker.Available(ctx) {
		return docker, nil
	}
	if podman := newPodmanRuntime(exec); podman.Available(ctx) {
		return podman, nil
	}
	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}
