package confirm

import (
	"bytes"
	"strings"
	"testing"
)

func TestInteractivePauseWaitsForNewline(t *testing.T) {
	var out bytes.Buffer
	c := &Interactive{In: strings.NewReader("\n"), Out: &out}
	if err := c.Pause("Review the .env file"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Review the .env file") {
		t.Errorf("prompt not written: %q", out.String())
	}
}

func TestInteractivePauseAcceptsEOF(t *testing.T) {
	var out bytes.Buffer
	c := &Interactive{In: strings.NewReader(""), Out: &out}
	if err := c.Pause("continue?"); err != nil {
		t.Fatalf("expected EOF to be treated as acknowledgment, got %v", err)
	}
}

func TestInteractiveAsk(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		c := &Interactive{In: strings.NewReader(tc.input), Out: &out}
		got, err := c.Ask("deploy?")
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("input %q: expected %v, got %v", tc.input, tc.want, got)
		}
	}
}

func TestAutoNeverBlocks(t *testing.T) {
	c := &Auto{Answer: true}
	if err := c.Pause("anything"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err := c.Ask("deploy?")
	if err != nil || !ok {
		t.Errorf("expected auto yes, got %v, %v", ok, err)
	}
}
