// Package engine runs the ordered bootstrap sequence: idempotent system
// steps, then delegated pipeline targets, pausing for the operator at phase
// boundaries and aborting on the first failure.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pipeboot/pipeboot/internal/azure"
	"github.com/pipeboot/pipeboot/internal/config"
	"github.com/pipeboot/pipeboot/internal/confirm"
	booterrors "github.com/pipeboot/pipeboot/internal/errors"
	"github.com/pipeboot/pipeboot/internal/envfile"
	"github.com/pipeboot/pipeboot/internal/pipeline"
	"github.com/pipeboot/pipeboot/internal/runlog"
	"github.com/pipeboot/pipeboot/internal/step"
	"github.com/pipeboot/pipeboot/internal/system"
)

// Mode controls execution behavior.
type Mode int

const (
	// ModeRun executes steps and delegated targets.
	ModeRun Mode = iota
	// ModeDryRun resolves and reports every command without executing.
	ModeDryRun
	// ModeCheck runs only the provisioning predicates and reports state.
	ModeCheck
)

// Engine drives one bootstrap run. All host access goes through the injected
// capabilities so tests never touch live package state.
type Engine struct {
	Cfg     *config.Config
	Sys     system.State
	Confirm confirm.Confirmer
	Make    *pipeline.Make
	Env     *envfile.File
	Meta    *azure.Metadata
	WorkDir string

	// ForceDeploy answers the optional deploy branch without asking.
	ForceDeploy bool

	mode   Mode
	failed bool
	result *Result
	store  *runlog.Store
}

// New wires an engine from config with live capabilities. Delegated target
// output streams to stderr so the operator can watch ingestion progress
// without polluting stdout's machine-readable result.
func New(cfg *config.Config, sys system.State, conf confirm.Confirmer, workDir string) *Engine {
	return &Engine{
		Cfg:     cfg,
		Sys:     sys,
		Confirm: conf,
		Make:    pipeline.NewStreaming(cfg.MakefileDir, os.Stderr),
		Env:     &envfile.File{Path: cfg.EnvFile},
		Meta:    azure.New(cfg.IMDSEndpoint, sys),
		WorkDir: workDir,
	}
}

// Execute runs the full sequence in the given mode.
func (e *Engine) Execute(mode Mode) (*Result, error) {
	e.mode = mode
	e.failed = false
	e.result = &Result{RunID: uuid.New().String(), Success: true}

	if mode == ModeRun {
		store, err := runlog.New(e.result.RunID, e.WorkDir)
		if err != nil {
			return nil, err
		}
		e.store = store
		e.result.Transcript = store.BaseDir
	}

	e.preflight(mode)
	e.systemPhase(mode)
	if mode == ModeCheck {
		return e.result, nil
	}

	e.pause("System provisioning complete. Continue with pipeline dependency install")
	e.target(mode, "deps", "install", e.Make.Install)

	e.reviewEnv(mode)
	e.capture(mode)

	e.target(mode, "pipeline", "run_batch", e.Make.RunBatch)
	e.pause("Batch ingestion finished. Continue with real-time streaming")
	e.target(mode, "pipeline", "run_real_time", e.Make.RunRealTime)
	e.pause("Real-time streaming finished. Continue with the search sanity check")
	e.sanityCheck(mode)

	e.target(mode, "quality", "lint_check", e.Make.LintCheck)
	e.target(mode, "quality", "lint_fix", e.Make.LintFix)
	e.target(mode, "quality", "format_check", e.Make.FormatCheck)
	e.target(mode, "quality", "format_fix", e.Make.FormatFix)

	e.deployPhase(mode)

	if e.store != nil {
		_ = e.store.WriteResult(e.result)
	}
	return e.result, nil
}

// preflight aborts on a host whose package manager the catalog cannot drive.
func (e *Engine) preflight(mode Mode) {
	sr := StepResult{ID: "preflight", Phase: "system", Command: "command -v apt-get"}
	if e.Sys.CommandExists("apt-get") {
		sr.Status = StatusSatisfied
	} else if mode == ModeCheck || mode == ModeDryRun {
		sr.Status = StatusNeedsApply
		sr.Detail = "apt-get not found; the bootstrap requires a Debian/Ubuntu host"
	} else {
		err := &booterrors.RunError{
			Type:    booterrors.PreconditionFailed,
			StepID:  "preflight",
			Message: "apt-get not found; the bootstrap requires a Debian/Ubuntu host",
		}
		sr.Status = StatusFailed
		sr.Detail = err.Error()
		e.fail("preflight", err)
	}
	e.result.Steps = append(e.result.Steps, sr)
}

// systemPhase walks the provisioning catalog in order.
func (e *Engine) systemPhase(mode Mode) {
	for _, s := range step.Bootstrap(e.Cfg) {
		sr := StepResult{ID: s.ID, Phase: "system", Command: s.Describe()}

		if mode == ModeCheck {
			if s.Satisfied(e.Sys) {
				sr.Status = StatusSatisfied
			} else {
				sr.Status = StatusNeedsApply
			}
			e.result.Steps = append(e.result.Steps, sr)
			continue
		}

		if e.failed {
			sr.Status = StatusSkipped
			e.result.Steps = append(e.result.Steps, sr)
			continue
		}

		if s.Satisfied(e.Sys) {
			sr.Status = StatusSatisfied
			slog.Info("already satisfied", "step", s.ID)
			e.result.Steps = append(e.result.Steps, sr)
			continue
		}

		if mode == ModeDryRun {
			sr.Status = StatusDryRun
			sr.Detail = "Would run: " + s.Describe()
			e.result.Steps = append(e.result.Steps, sr)
			continue
		}

		slog.Info("applying", "step", s.ID, "summary", s.Summary)
		start := time.Now()
		err := s.Run(e.Sys)
		sr.Duration = time.Since(start).Round(time.Millisecond).String()
		if err != nil {
			sr.Status = StatusFailed
			sr.Detail = err.Error()
			e.fail(s.ID, err)
		} else {
			sr.Status = StatusApplied
		}
		e.result.Steps = append(e.result.Steps, sr)
	}
}

// target runs one delegated Makefile target, honoring fail-fast and dry-run.
func (e *Engine) target(mode Mode, phase, name string, call func() (*pipeline.Invocation, error)) {
	sr := StepResult{ID: name, Phase: phase, Command: "make " + name}

	if e.failed {
		sr.Status = StatusSkipped
		e.result.Steps = append(e.result.Steps, sr)
		return
	}
	if mode == ModeDryRun {
		sr.Status = StatusDryRun
		sr.Detail = "Would run: make " + name
		e.result.Steps = append(e.result.Steps, sr)
		return
	}

	slog.Info("delegating", "target", name)
	start := time.Now()
	inv, err := call()
	sr.Duration = time.Since(start).Round(time.Millisecond).String()
	if inv != nil {
		sr.Command = inv.Command
		if e.store != nil {
			_ = e.store.WriteStepOutput(name, inv.Stdout, inv.Stderr)
		}
	}
	if err != nil {
		sr.Status = StatusFailed
		sr.Detail = err.Error()
		e.fail(name, err)
	} else {
		sr.Status = StatusSuccess
	}
	e.result.Steps = append(e.result.Steps, sr)
}

// reviewEnv pauses so the operator can fill in credentials, reporting which
// required keys are still empty.
func (e *Engine) reviewEnv(mode Mode) {
	if e.failed || mode == ModeDryRun {
		return
	}
	msg := fmt.Sprintf("Review and edit %s with your credentials", e.Env.Path)
	if !e.Env.Exists() {
		msg = fmt.Sprintf("Create %s with your credentials", e.Env.Path)
	}
	if missing := e.Env.MissingKeys(e.Cfg.RequiredEnvKeys); len(missing) > 0 {
		msg += " (missing: " + strings.Join(missing, ", ") + ")"
	}
	e.pause(msg)
}

// capture appends AZURE_REGION and AZURE_PROFILE blocks to the env file.
func (e *Engine) capture(mode Mode) {
	sr := StepResult{ID: "capture-credentials", Phase: "credentials"}

	if e.failed {
		sr.Status = StatusSkipped
		e.result.Steps = append(e.result.Steps, sr)
		return
	}
	if mode == ModeDryRun {
		sr.Status = StatusDryRun
		sr.Detail = fmt.Sprintf("Would append AZURE_REGION and AZURE_PROFILE to %s", e.Env.Path)
		e.result.Steps = append(e.result.Steps, sr)
		return
	}

	_, _, err := e.CaptureCredentials()
	if err != nil {
		sr.Status = StatusFailed
		sr.Detail = err.Error()
		e.fail(sr.ID, err)
	} else {
		sr.Status = StatusSuccess
	}
	e.result.Steps = append(e.result.Steps, sr)
}

// CaptureCredentials queries the cloud boundary and appends the region and
// profile blocks to the env file. It backs both the credentials phase and the
// standalone capture command.
func (e *Engine) CaptureCredentials() (region, profile string, err error) {
	region, err = e.Meta.Region()
	if err != nil {
		return "", "", err
	}
	profile, err = e.Meta.Profile()
	if err != nil {
		return "", "", err
	}
	if err := e.Env.AppendBlock("Azure region (from instance metadata)", "AZURE_REGION", region); err != nil {
		return "", "", booterrors.NewStepError("capture-credentials", err.Error(), "")
	}
	if err := e.Env.AppendBlock("Azure profile (from az account show)", "AZURE_PROFILE", profile); err != nil {
		return "", "", booterrors.NewStepError("capture-credentials", err.Error(), "")
	}
	slog.Info("captured cloud identity", "region", region, "profile", profile)
	return region, profile, nil
}

// sanityCheck queries the search index; empty output is fatal.
func (e *Engine) sanityCheck(mode Mode) {
	sr := StepResult{ID: "search", Phase: "pipeline"}

	if e.failed {
		sr.Status = StatusSkipped
		e.result.Steps = append(e.result.Steps, sr)
		return
	}
	if mode == ModeDryRun {
		sr.Status = StatusDryRun
		sr.Detail = fmt.Sprintf("Would run: make search QUERY=%q", e.Cfg.SearchQuery)
		e.result.Steps = append(e.result.Steps, sr)
		return
	}

	start := time.Now()
	inv, err := e.Make.SanityCheck(e.Cfg.SearchQuery)
	sr.Duration = time.Since(start).Round(time.Millisecond).String()
	if inv != nil {
		sr.Command = inv.Command
		if e.store != nil {
			_ = e.store.WriteStepOutput("search", inv.Stdout, inv.Stderr)
		}
	}
	if err != nil {
		sr.Status = StatusFailed
		sr.Detail = err.Error()
		slog.Error("sanity check failed", "query", e.Cfg.SearchQuery)
		e.fail("search", err)
	} else {
		sr.Status = StatusSuccess
	}
	e.result.Steps = append(e.result.Steps, sr)
}

// deployPhase is the single operator-controlled optional branch.
func (e *Engine) deployPhase(mode Mode) {
	if e.failed {
		for _, name := range []string{"build", "deploy_azure", "info_azure"} {
			e.result.Steps = append(e.result.Steps, StepResult{
				ID: name, Phase: "deploy", Status: StatusSkipped,
			})
		}
		return
	}
	if mode == ModeDryRun {
		e.result.Steps = append(e.result.Steps, StepResult{
			ID: "deploy", Phase: "deploy", Status: StatusDryRun,
			Detail: "Would ask to build the image and deploy to Azure",
		})
		return
	}

	ok := e.ForceDeploy
	if !ok {
		answer, err := e.Confirm.Ask("Build the Docker image and deploy to Azure?")
		if err != nil {
			e.fail("deploy", &booterrors.RunError{
				Type: booterrors.ConfirmDeclined, StepID: "deploy", Message: err.Error(),
			})
			e.result.Steps = append(e.result.Steps, StepResult{
				ID: "deploy", Phase: "deploy", Status: StatusFailed, Detail: err.Error(),
			})
			return
		}
		ok = answer
	}
	if !ok {
		slog.Info("deployment declined by operator")
		e.result.Steps = append(e.result.Steps, StepResult{
			ID: "deploy", Phase: "deploy", Status: StatusDeclined,
		})
		return
	}

	e.target(mode, "deploy", "build", e.Make.BuildImage)
	e.target(mode, "deploy", "deploy_azure", e.Make.DeployAzure)
	e.target(mode, "deploy", "info_azure", e.Make.DeployInfo)
}

// pause hands control to the operator at a phase boundary. Dry runs never
// block.
func (e *Engine) pause(message string) {
	if e.failed || e.mode != ModeRun {
		return
	}
	if err := e.Confirm.Pause(message); err != nil {
		e.fail("confirm", &booterrors.RunError{
			Type: booterrors.ConfirmDeclined, Message: err.Error(),
		})
	}
}

// fail records the first failure and flips the engine into skip mode.
func (e *Engine) fail(stepID string, err error) {
	slog.Error("step failed", "step", stepID, "error", err)
	e.failed = true
	e.result.Success = false
	if e.result.FailedStepID == "" {
		e.result.FailedStepID = stepID
	}
	var re *booterrors.RunError
	if errors.As(err, &re) {
		e.result.Errors = append(e.result.Errors, re)
	} else {
		e.result.Errors = append(e.result.Errors, booterrors.NewStepError(stepID, err.Error(), ""))
	}
}
