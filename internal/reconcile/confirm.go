package reconcile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirmer answers yes/no prompts. Deletion proceeds only on an exact,
// case-sensitive "yes"; anything else is a no.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// TTYConfirmer prompts on the controlling terminal rather than stdin, so
// confirmation still works when the directory list is piped in.
type TTYConfirmer struct {
	tty *os.File
	rd  *bufio.Reader
}

// NewTTYConfirmer opens /dev/tty. It fails when the process has no
// controlling terminal, in which case the caller should refuse to run
// interactively rather than silently consume the batch input stream.
func NewTTYConfirmer() (*TTYConfirmer, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open controlling terminal: %w", err)
	}
	return &TTYConfirmer{tty: tty, rd: bufio.NewReader(tty)}, nil
}

// Confirm writes the prompt to the terminal and reads one line.
func (c *TTYConfirmer) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprint(c.tty, prompt); err != nil {
		return false, err
	}
	line, err := c.rd.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	return strings.TrimRight(line, "\r\n") == "yes", nil
}

// Close releases the terminal.
func (c *TTYConfirmer) Close() error {
	return c.tty.Close()
}

// ScriptConfirmer feeds scripted answers, one per prompt. Exhausted answers
// and non-"yes" answers both decline. Used by tests and by --yes-from.
type ScriptConfirmer struct {
	Answers []string
	next    int
}

func (c *ScriptConfirmer) Confirm(string) (bool, error) {
	if c.next >= len(c.Answers) {
		return false, nil
	}
	answer := c.Answers[c.next]
	c.next++
	return answer == "yes", nil
}

// ReadAnswers loads one answer per line from r, for --yes-from files.
func ReadAnswers(r io.Reader) ([]string, error) {
	var answers []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		answers = append(answers, strings.TrimRight(sc.Text(), "\r\n"))
	}
	return answers, sc.Err()
}
