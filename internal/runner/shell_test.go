package runner

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunEchoHello(t *testing.T) {
	r := Run("echo hello", "")
	if r.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", r.ExitCode)
	}
	if strings.TrimSpace(r.Stdout) != "hello" {
		t.Errorf("expected stdout 'hello', got %q", r.Stdout)
	}
}

func TestRunCaptureStderr(t *testing.T) {
	r := Run("echo error >&2", "")
	if r.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", r.ExitCode)
	}
	if strings.TrimSpace(r.Stderr) != "error" {
		t.Errorf("expected stderr 'error', got %q", r.Stderr)
	}
}

func TestRunNonZeroExitCode(t *testing.T) {
	r := Run("exit 42", "")
	if r.ExitCode != 42 {
		t.Errorf("expected exit code 42, got %d", r.ExitCode)
	}
}

func TestRunEnvPassesVariables(t *testing.T) {
	r := RunEnv("echo $BOOT_MARKER", "", []string{"BOOT_MARKER=present"})
	if r.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", r.ExitCode)
	}
	if strings.TrimSpace(r.Stdout) != "present" {
		t.Errorf("expected stdout 'present', got %q", r.Stdout)
	}
}

func TestRunStreamingTeesOutput(t *testing.T) {
	var out, errW bytes.Buffer
	r := RunStreaming("echo live; echo err >&2", "", &out, &errW)
	if r.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", r.ExitCode)
	}
	if strings.TrimSpace(out.String()) != "live" {
		t.Errorf("expected teed stdout 'live', got %q", out.String())
	}
	if strings.TrimSpace(r.Stdout) != "live" {
		t.Errorf("expected captured stdout 'live', got %q", r.Stdout)
	}
	if strings.TrimSpace(errW.String()) != "err" {
		t.Errorf("expected teed stderr 'err', got %q", errW.String())
	}
}

func TestRunWorkDir(t *testing.T) {
	dir := t.TempDir()
	r := Run("pwd", dir)
	if r.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", r.ExitCode)
	}
	if strings.TrimSpace(r.Stdout) != dir {
		t.Errorf("expected stdout %q, got %q", dir, strings.TrimSpace(r.Stdout))
	}
}
