package runner

import (
	"bytes"
	"io"
	"os"
	"os/exec"
)

// ShellResult holds the output of a shell command.
type ShellResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes a command via sh -c and captures output.
func Run(command, workDir string) *ShellResult {
	return RunEnv(command, workDir, nil)
}

// RunEnv executes a command via sh -c with extra environment variables
// (key=value) appended to the process environment.
func RunEnv(command, workDir string, env []string) *ShellResult {
	cmd := exec.Command("sh", "-c", command)
	if workDir != "" {
		cmd.Dir = workDir
	}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return &ShellResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(err),
	}
}

// RunStreaming executes a command via sh -c while teeing stdout/stderr to the
// given writers. Long-running delegated targets (batch ingestion, real-time
// streaming) use this so the operator sees live output; the captured copy
// still ends up in the run transcript.
func RunStreaming(command, workDir string, outW, errW io.Writer) *ShellResult {
	cmd := exec.Command("sh", "-c", command)
	if workDir != "" {
		cmd.Dir = workDir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = io.MultiWriter(&stdout, outW)
	cmd.Stderr = io.MultiWriter(&stderr, errW)

	err := cmd.Run()

	return &ShellResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(err),
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return 1
}
