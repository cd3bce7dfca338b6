// Package pipeline wraps the delegated Makefile targets of the streaming
// pipeline. Every target is an opaque external call whose only observable
// facts are its exit status and captured output.
package pipeline

import (
	"fmt"
	"io"
	"strings"

	booterrors "github.com/pipeboot/pipeboot/internal/errors"
	"github.com/pipeboot/pipeboot/internal/runner"
)

// Invocation records one delegated target call.
type Invocation struct {
	Target   string
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
}

// Make invokes targets of the external Makefile in Dir. Exec defaults to the
// shell runner and is swappable in tests.
type Make struct {
	Dir  string
	Exec func(command, workDir string) *runner.ShellResult
}

// New returns a Make bound to the pipeline checkout directory.
func New(dir string) *Make {
	return &Make{Dir: dir, Exec: runner.Run}
}

// NewStreaming returns a Make that tees target output to w while it runs, so
// the operator can watch long ingestion targets live. The captured copy still
// lands in the run transcript.
func NewStreaming(dir string, w io.Writer) *Make {
	return &Make{Dir: dir, Exec: func(command, workDir string) *runner.ShellResult {
		return runner.RunStreaming(command, workDir, w, w)
	}}
}

func (m *Make) invoke(target string, args ...string) (*Invocation, error) {
	command := "make " + target
	if len(args) > 0 {
		command += " " + strings.Join(args, " ")
	}
	r := m.Exec(command, m.Dir)
	inv := &Invocation{
		Target:   target,
		Command:  command,
		Stdout:   r.Stdout,
		Stderr:   r.Stderr,
		ExitCode: r.ExitCode,
	}
	if r.ExitCode != 0 {
		return inv, booterrors.NewStepError(target,
			fmt.Sprintf("make %s exited %d", target, r.ExitCode),
			"See the run transcript for the target's output")
	}
	return inv, nil
}

// Install runs the dependency-installation target.
func (m *Make) Install() (*Invocation, error) { return m.invoke("install") }

// RunBatch runs the batch ingestion target.
func (m *Make) RunBatch() (*Invocation, error) { return m.invoke("run_batch") }

// RunRealTime runs the real-time streaming target.
func (m *Make) RunRealTime() (*Invocation, error) { return m.invoke("run_real_time") }

// Search runs the parameterized search target.
func (m *Make) Search(query string) (*Invocation, error) {
	return m.invoke("search", "QUERY="+shellQuote(query))
}

// SanityCheck queries the search index and requires a non-empty result.
func (m *Make) SanityCheck(query string) (*Invocation, error) {
	inv, err := m.Search(query)
	if err != nil {
		return inv, booterrors.NewSanityCheckError("search", "search query failed: "+err.Error())
	}
	if strings.TrimSpace(inv.Stdout) == "" {
		return inv, booterrors.NewSanityCheckError("search", "search query returned no results")
	}
	return inv, nil
}

// LintCheck runs the lint-check target.
func (m *Make) LintCheck() (*Invocation, error) { return m.invoke("lint_check") }

// LintFix runs the lint-fix target.
func (m *Make) LintFix() (*Invocation, error) { return m.invoke("lint_fix") }

// FormatCheck runs the format-check target.
func (m *Make) FormatCheck() (*Invocation, error) { return m.invoke("format_check") }

// FormatFix runs the format-fix target.
func (m *Make) FormatFix() (*Invocation, error) { return m.invoke("format_fix") }

// BuildImage builds the pipeline's container image.
func (m *Make) BuildImage() (*Invocation, error) { return m.invoke("build") }

// RunContainer runs the pipeline inside the built image.
func (m *Make) RunContainer() (*Invocation, error) { return m.invoke("run_docker") }

// DeployAzure deploys the image to Azure.
func (m *Make) DeployAzure() (*Invocation, error) { return m.invoke("deploy_azure") }

// UndeployAzure tears the deployment down.
func (m *Make) UndeployAzure() (*Invocation, error) { return m.invoke("undeploy_azure") }

// DeployInfo reports the deployment status.
func (m *Make) DeployInfo() (*Invocation, error) { return m.invoke("info_azure") }

// shellQuote single-quotes a value for sh, escaping embedded quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
