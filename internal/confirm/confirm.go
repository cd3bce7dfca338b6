// Package confirm is the operator-interaction capability injected into the
// engine, so headless runs and tests can swap in an auto-confirm.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer gates phase boundaries and the optional deploy branch.
type Confirmer interface {
	// Pause blocks until the operator acknowledges.
	Pause(message string) error
	// Ask poses a yes/no question and returns the answer.
	Ask(question string) (bool, error)
}

// Interactive prompts on Out and reads answers from In.
type Interactive struct {
	In  io.Reader
	Out io.Writer
}

func (c *Interactive) Pause(message string) error {
	fmt.Fprintf(c.Out, "%s [press enter to continue] ", message)
	_, err := bufio.NewReader(c.In).ReadString('\n')
	if err == io.EOF {
		return nil
	}
	return err
}

func (c *Interactive) Ask(question string) (bool, error) {
	fmt.Fprintf(c.Out, "%s [y/N] ", question)
	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// Auto never blocks: Pause is a no-op and Ask always returns Answer.
type Auto struct {
	Answer bool
}

func (c *Auto) Pause(string) error { return nil }

func (c *Auto) Ask(string) (bool, error) { return c.Answer, nil }
