// Package system abstracts the host probes and mutations the bootstrap
// performs, so steps query an interface instead of live commands.
package system

import (
	"fmt"
	"os"
	"strings"

	"github.com/pipeboot/pipeboot/internal/runner"
)

// State is the injected view of the host a step checks and mutates.
type State interface {
	// CommandExists reports whether an executable is on PATH.
	CommandExists(name string) bool
	// PackageInstalled reports whether a dpkg package is installed cleanly.
	PackageInstalled(name string) bool
	// FileExists reports whether a path exists.
	FileExists(path string) bool
	// FileContains reports whether any file matching the glob contains needle.
	FileContains(glob, needle string) bool
	// Output runs a command and returns trimmed stdout; err is non-nil on
	// non-zero exit, carrying stderr in its message.
	Output(command string) (string, error)
	// Exec runs a mutating command; err is non-nil on non-zero exit.
	Exec(command string) error
	// AppendLine appends a line to a file, creating it if absent.
	AppendLine(path, line string) error
}

// Host is the live implementation backed by the shell runner.
type Host struct {
	// WorkDir is the directory commands run in; empty means inherit.
	WorkDir string
}

func (h *Host) CommandExists(name string) bool {
	r := runner.Run(fmt.Sprintf("command -v %s", name), h.WorkDir)
	return r.ExitCode == 0
}

func (h *Host) PackageInstalled(name string) bool {
	r := runner.Run(fmt.Sprintf("dpkg -s %s", name), h.WorkDir)
	return r.ExitCode == 0
}

func (h *Host) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (h *Host) FileContains(glob, needle string) bool {
	r := runner.Run(fmt.Sprintf("grep -qs %q %s", needle, glob), h.WorkDir)
	return r.ExitCode == 0
}

func (h *Host) Output(command string) (string, error) {
	r := runner.Run(command, h.WorkDir)
	if r.ExitCode != 0 {
		return "", fmt.Errorf("%q exited %d: %s", command, r.ExitCode, strings.TrimSpace(r.Stderr))
	}
	return strings.TrimSpace(r.Stdout), nil
}

func (h *Host) Exec(command string) error {
	r := runner.Run(command, h.WorkDir)
	if r.ExitCode != 0 {
		return fmt.Errorf("%q exited %d: %s", command, r.ExitCode, strings.TrimSpace(r.Stderr))
	}
	return nil
}

func (h *Host) AppendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	return err
}
