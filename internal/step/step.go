// Package step defines the idempotent provisioning unit the engine executes:
// a predicate ("already satisfied?") paired with an action, plus optional
// fallback and post-apply verification policies expressed as data.
package step

import (
	"strings"

	"github.com/pipeboot/pipeboot/internal/system"
)

// Step is one provisioning unit. When Check reports true the action is
// skipped; otherwise Apply runs, then Fallback if Apply failed, then Verify.
type Step struct {
	ID      string
	Summary string

	// Check reports whether the step is already satisfied. A nil Check means
	// the step always applies (package index refresh, dpkg reconcile).
	Check func(sys system.State) bool

	// Apply is the ordered list of shell commands run when unsatisfied.
	// ApplyFunc overrides it for steps that need more than shelling out.
	Apply     []string
	ApplyFunc func(sys system.State) error

	// Fallback runs when Apply fails; a failed Fallback fails the step.
	Fallback     func(sys system.State) error
	FallbackDesc string

	// Verify runs after a successful apply; a non-nil error fails the step
	// (version-pin enforcement).
	Verify func(sys system.State) error
}

// Satisfied reports the Check result, treating a nil Check as never
// satisfied.
func (s *Step) Satisfied(sys system.State) bool {
	return s.Check != nil && s.Check(sys)
}

// Run applies the step against the host, honoring the fallback policy. The
// fallback covers both a failed primary action and a primary action that
// succeeded with the wrong result: a distro package at another version still
// fails verification, and that mismatch is what a source build is for.
func (s *Step) Run(sys system.State) error {
	err := s.apply(sys)
	if err == nil {
		err = s.verify(sys)
	}
	if err != nil && s.Fallback != nil {
		if err = s.Fallback(sys); err != nil {
			return err
		}
		return s.verify(sys)
	}
	return err
}

func (s *Step) verify(sys system.State) error {
	if s.Verify != nil {
		return s.Verify(sys)
	}
	return nil
}

func (s *Step) apply(sys system.State) error {
	if s.ApplyFunc != nil {
		return s.ApplyFunc(sys)
	}
	for _, cmd := range s.Apply {
		if err := sys.Exec(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Describe returns the step's commands for dry-run display.
func (s *Step) Describe() string {
	if len(s.Apply) > 0 {
		desc := strings.Join(s.Apply, " && ")
		if s.FallbackDesc != "" {
			desc += " (fallback: " + s.FallbackDesc + ")"
		}
		return desc
	}
	return s.Summary
}
