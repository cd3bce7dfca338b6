package step

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pipeboot/pipeboot/internal/config"
	booterrors "github.com/pipeboot/pipeboot/internal/errors"
	"github.com/pipeboot/pipeboot/internal/system"
)

// prereqPackages is the fixed set of build prerequisites installed before
// anything else.
var prereqPackages = []string{
	"build-essential",
	"curl",
	"ca-certificates",
	"software-properties-common",
	"git",
}

const aptSourceGlob = "/etc/apt/sources.list /etc/apt/sources.list.d/*"

// Bootstrap returns the ordered system-provisioning steps. Order matters:
// later steps assume earlier ones completed (poetry and the venv require the
// interpreter, the interpreter requires the deadsnakes source).
func Bootstrap(cfg *config.Config) []Step {
	pythonBin := "python" + cfg.PythonVersion
	venv := cfg.ExpandedVenvPath()
	poetryBin := filepath.Join(venv, "bin", "poetry")
	pipBin := filepath.Join(venv, "bin", "pip")

	return []Step{
		{
			ID:      "dpkg-configure",
			Summary: "reconcile interrupted package transactions",
			Apply:   []string{"sudo dpkg --configure -a"},
		},
		{
			ID:      "apt-update",
			Summary: "refresh package index and upgrade installed packages",
			Apply: []string{
				"sudo apt-get update",
				"sudo apt-get upgrade -y",
			},
		},
		{
			ID:      "build-prereqs",
			Summary: "install build prerequisites",
			Check: func(sys system.State) bool {
				for _, pkg := range prereqPackages {
					if !sys.PackageInstalled(pkg) {
						return false
					}
				}
				return true
			},
			Apply: []string{
				"sudo apt-get install -y " + strings.Join(prereqPackages, " "),
			},
		},
		{
			ID:      "deadsnakes-ppa",
			Summary: "register the deadsnakes package source",
			Check: func(sys system.State) bool {
				return sys.FileContains(aptSourceGlob, "deadsnakes")
			},
			Apply: []string{
				"sudo add-apt-repository -y ppa:deadsnakes/ppa",
				"sudo apt-get update",
			},
		},
		{
			ID:      "python",
			Summary: "install Python " + cfg.PythonVersion,
			Check: func(sys system.State) bool {
				out, err := sys.Output(pythonBin + " --version")
				return err == nil && strings.HasPrefix(out, "Python "+cfg.PythonVersion)
			},
			Apply: []string{
				fmt.Sprintf("sudo apt-get install -y %s %s-dev %s-venv %s-distutils",
					pythonBin, pythonBin, pythonBin, pythonBin),
			},
		},
		{
			ID:      "pip",
			Summary: "bootstrap pip for " + pythonBin,
			Check: func(sys system.State) bool {
				_, err := sys.Output(pythonBin + " -m pip --version")
				return err == nil
			},
			Apply: []string{
				"curl -sS https://bootstrap.pypa.io/get-pip.py | " + pythonBin,
			},
		},
		{
			ID:      "venv",
			Summary: "create virtualenv at " + venv,
			Check: func(sys system.State) bool {
				return sys.FileExists(venv)
			},
			Apply: []string{
				pythonBin + " -m venv " + venv,
			},
		},
		{
			ID:      "poetry",
			Summary: "install Poetry " + cfg.PoetryVersion,
			Check: func(sys system.State) bool {
				out, err := sys.Output(poetryBin + " --version")
				return err == nil && poetryVersion(out) == cfg.PoetryVersion
			},
			// pip upgrades an existing mismatched install in place.
			Apply: []string{
				fmt.Sprintf("%s install --upgrade poetry==%s", pipBin, cfg.PoetryVersion),
			},
			Verify: func(sys system.State) error {
				out, err := sys.Output(poetryBin + " --version")
				if err != nil {
					return booterrors.NewStepError("poetry", "poetry not runnable after install: "+err.Error(), "")
				}
				if got := poetryVersion(out); got != cfg.PoetryVersion {
					return booterrors.NewVersionMismatch("poetry", cfg.PoetryVersion, got)
				}
				return nil
			},
		},
		{
			ID:      "make",
			Summary: "install GNU Make " + cfg.MakeVersion,
			Check: func(sys system.State) bool {
				out, err := sys.Output("make --version")
				return err == nil && makeVersionMatches(out, cfg.MakeVersion)
			},
			Apply: []string{
				"sudo apt-get install -y make",
			},
			Fallback:     buildMakeFromSource(cfg),
			FallbackDesc: "build make " + cfg.MakeVersion + " from source into /usr/local",
			Verify: func(sys system.State) error {
				out, err := sys.Output("make --version")
				if err != nil {
					return booterrors.NewStepError("make", "make not runnable after install: "+err.Error(), "")
				}
				if !makeVersionMatches(out, cfg.MakeVersion) {
					return booterrors.NewVersionMismatch("make", cfg.MakeVersion, firstLine(out))
				}
				return nil
			},
		},
	}
}

// buildMakeFromSource compiles the pinned make release into /usr/local and
// puts /usr/local/bin ahead of the distro make via the shell profile.
func buildMakeFromSource(cfg *config.Config) func(sys system.State) error {
	return func(sys system.State) error {
		tarball := fmt.Sprintf("make-%s.tar.gz", cfg.MakeVersion)
		build := strings.Join([]string{
			"cd /tmp",
			fmt.Sprintf("curl -sLO https://ftp.gnu.org/gnu/make/%s", tarball),
			"tar xzf " + tarball,
			fmt.Sprintf("cd make-%s", cfg.MakeVersion),
			"./configure --prefix=/usr/local",
			"make",
			"sudo make install",
		}, " && ")
		if err := sys.Exec(build); err != nil {
			return err
		}
		return sys.AppendLine(cfg.ExpandedShellProfile(), `export PATH=/usr/local/bin:$PATH`)
	}
}

// poetryVersion extracts the bare version from "Poetry (version 1.5.1)".
func poetryVersion(out string) string {
	line := firstLine(out)
	if i := strings.Index(line, "(version "); i >= 0 {
		return strings.TrimSuffix(line[i+len("(version "):], ")")
	}
	fields := strings.Fields(line)
	if len(fields) > 0 {
		return fields[len(fields)-1]
	}
	return line
}

// makeVersionMatches checks the pinned version against the banner line
// "GNU Make 4.3". Exact prefix match on the pin; "4.31" does not pass "4.3".
func makeVersionMatches(out, pin string) bool {
	fields := strings.Fields(firstLine(out))
	if len(fields) == 0 {
		return false
	}
	got := fields[len(fields)-1]
	return got == pin || strings.HasPrefix(got, pin+".")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
