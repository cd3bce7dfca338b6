package system

import (
	"fmt"
	"strings"
)

// Fake is a scripted State for tests. Probes answer from maps; Exec records
// every command and can be told to fail on a substring match.
type Fake struct {
	Commands map[string]bool   // name → on PATH
	Packages map[string]bool   // dpkg name → installed
	Files    map[string]bool   // path → exists
	Contents map[string]string // glob → file contents
	Outputs  map[string]string // command → stdout
	FailExec string            // any Exec/Output containing this substring fails
	ExecLog  []string          // mutating commands in order
	Appended map[string][]string

	// OnExec, when set, observes every successful Exec so a test can script
	// state changes the command would cause on a real host.
	OnExec func(command string)
}

// NewFake returns an empty scripted host.
func NewFake() *Fake {
	return &Fake{
		Commands: map[string]bool{},
		Packages: map[string]bool{},
		Files:    map[string]bool{},
		Contents: map[string]string{},
		Outputs:  map[string]string{},
		Appended: map[string][]string{},
	}
}

func (f *Fake) CommandExists(name string) bool { return f.Commands[name] }

func (f *Fake) PackageInstalled(name string) bool { return f.Packages[name] }

func (f *Fake) FileExists(path string) bool { return f.Files[path] }

func (f *Fake) FileContains(glob, needle string) bool {
	return strings.Contains(f.Contents[glob], needle)
}

func (f *Fake) Output(command string) (string, error) {
	if f.FailExec != "" && strings.Contains(command, f.FailExec) {
		return "", fmt.Errorf("%q exited 1", command)
	}
	out, ok := f.Outputs[command]
	if !ok {
		return "", fmt.Errorf("%q exited 127: command not scripted", command)
	}
	return out, nil
}

func (f *Fake) Exec(command string) error {
	if f.FailExec != "" && strings.Contains(command, f.FailExec) {
		return fmt.Errorf("%q exited 1", command)
	}
	f.ExecLog = append(f.ExecLog, command)
	if f.OnExec != nil {
		f.OnExec(command)
	}
	return nil
}

func (f *Fake) AppendLine(path, line string) error {
	f.Appended[path] = append(f.Appended[path], line)
	return nil
}

// ExecutedMatching returns logged Exec commands containing the substring.
func (f *Fake) ExecutedMatching(sub string) []string {
	var out []string
	for _, c := range f.ExecLog {
		if strings.Contains(c, sub) {
			out = append(out, c)
		}
	}
	return out
}
