package system

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHostCommandExists(t *testing.T) {
	h := &Host{}
	if !h.CommandExists("sh") {
		t.Error("expected sh to exist")
	}
	if h.CommandExists("definitely-not-a-real-binary-xyz") {
		t.Error("expected missing command to report false")
	}
}

func TestHostFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probe.txt")
	h := &Host{}
	if h.FileExists(path) {
		t.Error("expected missing file to report false")
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !h.FileExists(path) {
		t.Error("expected file to report true")
	}
}

func TestHostFileContains(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.list")
	if err := os.WriteFile(path, []byte("deb http://archive example main\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := &Host{}
	if !h.FileContains(path, "archive") {
		t.Error("expected needle to be found")
	}
	if h.FileContains(path, "deadsnakes") {
		t.Error("expected missing needle to report false")
	}
	if h.FileContains(filepath.Join(dir, "nope*"), "anything") {
		t.Error("expected unmatched glob to report false")
	}
}

func TestHostOutputTrimsAndFails(t *testing.T) {
	h := &Host{}
	out, err := h.Output("echo '  padded  '")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "padded" {
		t.Errorf("expected trimmed output, got %q", out)
	}
	if _, err := h.Output("echo bad >&2; exit 3"); err == nil {
		t.Error("expected error on non-zero exit")
	}
}

func TestHostAppendLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile")
	h := &Host{}
	if err := h.AppendLine(path, "export PATH=/usr/local/bin:$PATH"); err != nil {
		t.Fatal(err)
	}
	if err := h.AppendLine(path, "second"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "export PATH=/usr/local/bin:$PATH\nsecond\n"
	if string(data) != want {
		t.Errorf("expected %q, got %q", want, string(data))
	}
}
