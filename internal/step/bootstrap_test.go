package step

import (
	"errors"
	"strings"
	"testing"

	"github.com/pipeboot/pipeboot/internal/config"
	booterrors "github.com/pipeboot/pipeboot/internal/errors"
	"github.com/pipeboot/pipeboot/internal/system"
)

func indexOf(t *testing.T, steps []Step, id string) int {
	t.Helper()
	for i, s := range steps {
		if s.ID == id {
			return i
		}
	}
	t.Fatalf("step %q not in catalog", id)
	return -1
}

func TestCatalogOrdering(t *testing.T) {
	steps := Bootstrap(config.Default())
	python := indexOf(t, steps, "python")
	if indexOf(t, steps, "deadsnakes-ppa") >= python {
		t.Error("package source must be registered before the interpreter")
	}
	if indexOf(t, steps, "venv") <= python {
		t.Error("venv creation must come after the interpreter")
	}
	if indexOf(t, steps, "poetry") <= python {
		t.Error("poetry install must come after the interpreter")
	}
	if indexOf(t, steps, "poetry") <= indexOf(t, steps, "venv") {
		t.Error("poetry installs into the venv and must come after it")
	}
}

func TestReconcileAndUpdateAlwaysApply(t *testing.T) {
	steps := Bootstrap(config.Default())
	sys := system.NewFake()
	for _, id := range []string{"dpkg-configure", "apt-update"} {
		s := steps[indexOf(t, steps, id)]
		if s.Satisfied(sys) {
			t.Errorf("step %q must never report satisfied", id)
		}
	}
}

func TestPrereqCheckRequiresEveryPackage(t *testing.T) {
	steps := Bootstrap(config.Default())
	s := steps[indexOf(t, steps, "build-prereqs")]
	sys := system.NewFake()
	for _, pkg := range prereqPackages {
		sys.Packages[pkg] = true
	}
	if !s.Satisfied(sys) {
		t.Error("expected satisfied with all packages installed")
	}
	sys.Packages["curl"] = false
	if s.Satisfied(sys) {
		t.Error("expected unsatisfied with one package missing")
	}
}

func TestDeadsnakesCheckIsStringPresence(t *testing.T) {
	steps := Bootstrap(config.Default())
	s := steps[indexOf(t, steps, "deadsnakes-ppa")]
	sys := system.NewFake()
	if s.Satisfied(sys) {
		t.Error("expected unsatisfied with no sources")
	}
	sys.Contents[aptSourceGlob] = "deb https://ppa.launchpadcontent.net/deadsnakes/ppa/ubuntu jammy main"
	if !s.Satisfied(sys) {
		t.Error("expected satisfied once source list mentions deadsnakes")
	}
}

func TestPoetryCheckMatchesPinExactly(t *testing.T) {
	cfg := config.Default()
	cfg.VenvPath = "/opt/venv"
	steps := Bootstrap(cfg)
	s := steps[indexOf(t, steps, "poetry")]
	sys := system.NewFake()

	sys.Outputs["/opt/venv/bin/poetry --version"] = "Poetry (version 1.5.1)"
	if !s.Satisfied(sys) {
		t.Error("expected satisfied at pinned version")
	}
	sys.Outputs["/opt/venv/bin/poetry --version"] = "Poetry (version 1.6.1)"
	if s.Satisfied(sys) {
		t.Error("expected unsatisfied at a different version")
	}
}

func TestPoetryVerifyFailsOnMismatch(t *testing.T) {
	cfg := config.Default()
	cfg.VenvPath = "/opt/venv"
	steps := Bootstrap(cfg)
	s := steps[indexOf(t, steps, "poetry")]
	sys := system.NewFake()
	sys.Outputs["/opt/venv/bin/poetry --version"] = "Poetry (version 1.4.0)"

	err := s.Run(sys)
	if err == nil {
		t.Fatal("expected verification failure")
	}
	var re *booterrors.RunError
	if !errors.As(err, &re) || re.Type != booterrors.VersionMismatch {
		t.Fatalf("expected VERSION_MISMATCH, got %v", err)
	}
	if len(sys.ExecutedMatching("poetry==1.5.1")) != 1 {
		t.Error("expected the pinned install command to have run")
	}
}

func TestMakeFallbackBuildsFromSource(t *testing.T) {
	cfg := config.Default()
	cfg.ShellProfile = "/home/op/.bashrc"
	steps := Bootstrap(cfg)
	s := steps[indexOf(t, steps, "make")]
	sys := system.NewFake()
	sys.FailExec = "apt-get install -y make"
	sys.Outputs["make --version"] = "GNU Make 4.3\nBuilt for x86_64-pc-linux-gnu"

	if err := s.Run(sys); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sys.ExecutedMatching("ftp.gnu.org/gnu/make/make-4.3.tar.gz")) != 1 {
		t.Error("expected source build to have run")
	}
	lines := sys.Appended["/home/op/.bashrc"]
	if len(lines) != 1 || !strings.Contains(lines[0], "/usr/local/bin") {
		t.Errorf("expected PATH update appended to shell profile, got %v", lines)
	}
}

func TestMakeWrongDistroVersionTriggersSourceBuild(t *testing.T) {
	cfg := config.Default()
	cfg.ShellProfile = "/home/op/.bashrc"
	steps := Bootstrap(cfg)
	s := steps[indexOf(t, steps, "make")]
	sys := system.NewFake()
	// the distro package installs fine but carries a newer release; only the
	// source build delivers the pin
	sys.Outputs["make --version"] = "GNU Make 4.4.1"
	sys.OnExec = func(command string) {
		if strings.Contains(command, "ftp.gnu.org") {
			sys.Outputs["make --version"] = "GNU Make 4.3"
		}
	}

	if err := s.Run(sys); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sys.ExecutedMatching("apt-get install -y make")) != 1 {
		t.Error("expected the distro install to have been tried first")
	}
	if len(sys.ExecutedMatching("ftp.gnu.org/gnu/make/make-4.3.tar.gz")) != 1 {
		t.Error("expected the source build to run after the version mismatch")
	}
	if lines := sys.Appended["/home/op/.bashrc"]; len(lines) != 1 {
		t.Errorf("expected PATH update appended to shell profile, got %v", lines)
	}
}

func TestMakeSourceBuildStillMismatchedFails(t *testing.T) {
	steps := Bootstrap(config.Default())
	s := steps[indexOf(t, steps, "make")]
	sys := system.NewFake()
	sys.Outputs["make --version"] = "GNU Make 4.4.1"

	err := s.Run(sys)
	if err == nil {
		t.Fatal("expected verification failure when the source build changes nothing")
	}
	var re *booterrors.RunError
	if !errors.As(err, &re) || re.Type != booterrors.VersionMismatch {
		t.Fatalf("expected VERSION_MISMATCH, got %v", err)
	}
	if len(sys.ExecutedMatching("ftp.gnu.org")) != 1 {
		t.Error("expected the source build to have been attempted")
	}
}

func TestMakeVersionMatching(t *testing.T) {
	if !makeVersionMatches("GNU Make 4.3", "4.3") {
		t.Error("expected exact banner to match")
	}
	if !makeVersionMatches("GNU Make 4.3.1", "4.3") {
		t.Error("expected patch release to match the pin")
	}
	if makeVersionMatches("GNU Make 4.31", "4.3") {
		t.Error("expected 4.31 to not match pin 4.3")
	}
	if makeVersionMatches("GNU Make 4.2.1", "4.3") {
		t.Error("expected 4.2.1 to not match pin 4.3")
	}
}

func TestPoetryVersionParsing(t *testing.T) {
	if got := poetryVersion("Poetry (version 1.5.1)"); got != "1.5.1" {
		t.Errorf("expected 1.5.1, got %q", got)
	}
	if got := poetryVersion("Poetry version 1.1.15"); got != "1.1.15" {
		t.Errorf("expected 1.1.15, got %q", got)
	}
}
