// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container implements container runtime detection and execution.
// The PDF converter runs its external tool through a Runtime so that docker
// and podman hosts are handled the same way.
package container

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// imageChecks holds the subcommand each runtime uses to test for a local
// image. The order of preference is docker, then podman.
var imageChecks = []struct {
	bin  string
	args []string
}{
	{binDocker, []string{"image", "inspect"}},
	{binPodman, []string{"image", "exists"}},
}

// Mount binds a host path into the container.
type Mount struct {
	Host      string
	Container string
	ReadOnly  bool
}

// String renders the mount as a -v argument value.
func (m Mount) String() string {
	s := m.Host + ":" + m.Container
	if m.ReadOnly {
		s += ":ro"
	}
	return s
}

// RunSpec describes one container invocation.
type RunSpec struct {
	Image  string
	Mounts []Mount
	// Args is the command and arguments run inside the container.
	Args []string
}

// Runtime provides container operations: checking availability, verifying
// images, and running containers.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available() bool

	// ImageExists checks whether the named image exists locally.
	// Returns nil when the image is found, or an error describing the failure.
	ImageExists(image string) error

	// Run executes a container and returns its combined stdout and stderr.
	// The output is returned even when the container exits non-zero.
	Run(ctx context.Context, spec RunSpec) (string, error)
}

// executor runs host commands. Tests replace it with a fake.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunCombined(ctx context.Context, name string, args []string) ([]byte, error)
}

type hostExecutor struct{}

func (hostExecutor) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (hostExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (hostExecutor) RunCombined(ctx context.Context, name string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// cli is a Runtime driven through a docker-compatible command line.
type cli struct {
	bin        string
	imageCheck []string
	ex         executor
}

// newRuntime returns the runtime for bin, or nil if bin is not a known
// runtime.
func newRuntime(bin string, ex executor) *cli {
	for _, c := range imageChecks {
		if c.bin == bin {
			return &cli{bin: bin, imageCheck: c.args, ex: ex}
		}
	}
	return nil
}

func (c *cli) Name() string { return c.bin }

func (c *cli) Available() bool {
	if _, err := c.ex.LookPath(c.bin); err != nil {
		return false
	}
	return c.ex.RunSilent(c.bin, "info") == nil
}

func (c *cli) ImageExists(image string) error {
	args := append(append([]string{}, c.imageCheck...), image)
	if err := c.ex.RunSilent(c.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, c.bin, err)
	}
	return nil
}

// RunArgs returns the full argument list passed to the runtime binary.
func RunArgs(spec RunSpec) []string {
	args := []string{"run", "--rm"}
	for _, m := range spec.Mounts {
		args = append(args, "-v", m.String())
	}
	args = append(args, spec.Image)
	return append(args, spec.Args...)
}

func (c *cli) Run(ctx context.Context, spec RunSpec) (string, error) {
	out, err := c.ex.RunCombined(ctx, c.bin, RunArgs(spec))
	text := strings.TrimSpace(string(out))
	if err == nil {
		return text, nil
	}
	if text == "" {
		return text, fmt.Errorf("running %s container %s: %w", c.bin, spec.Image, err)
	}
	return text, fmt.Errorf("running %s container %s: %w: %s", c.bin, spec.Image, err, lastLines(text, 5))
}

// lastLines keeps the tail of tool output for error messages.
func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// DetectRuntime returns the first operational runtime, preferring docker
// over podman.
func DetectRuntime() (Runtime, error) {
	return detect(hostExecutor{})
}

// NamedRuntime returns the runtime for bin ("docker" or "podman") without
// probing it.
func NamedRuntime(bin string) (Runtime, error) {
	if c := newRuntime(bin, hostExecutor{}); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("unknown container runtime %q: use %s or %s", bin, binDocker, binPodman)
}

func detect(ex executor) (Runtime, error) {
	for _, c := range imageChecks {
		if rt := newRuntime(c.bin, ex); rt.Available() {
			return rt, nil
		}
	}
	return nil, fmt.Errorf("no container runtime available: neither %s nor %s is operational", binDocker, binPodman)
}
