// Package opener hands vault payload files to an external viewer.
package opener

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// ErrNoHandler is returned when the host has no launcher for files.
var ErrNoHandler = errors.New("no application found to open file")

// Opener is the open-with capability provided by the host environment.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Func adapts a function to Opener.
type Func func(ctx context.Context, path string) error

// Open calls f.
func (f Func) Open(ctx context.Context, path string) error {
	return f(ctx, path)
}

// System launches the platform's default application for a file.
type System struct {
	goos     string
	lookPath func(string) (string, error)
	start    func(cmd *exec.Cmd) error
	wait     func(cmd *exec.Cmd) error
}

// NewSystem returns an opener for the running platform.
func NewSystem() *System {
	return &System{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start:    (*exec.Cmd).Start,
		wait:     (*exec.Cmd).Wait,
	}
}

// Open starts the launcher without waiting for the viewer to exit.
func (s *System) Open(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	name, args := launcher(s.goos, path)
	bin, err := s.lookPath(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoHandler, err)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if err := s.start(cmd); err != nil {
		return fmt.Errorf("%w: %v", ErrNoHandler, err)
	}
	if cmd.Process != nil && s.wait != nil {
		// Reap the launcher so it does not linger as a zombie.
		go func() { _ = s.wait(cmd) }()
	}
	return nil
}

func launcher(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}
