package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Status writes colored per-directory status lines. Colors are disabled
// automatically when the writer is not a terminal (fatih/color handles
// NO_COLOR and pipe detection on os.Stdout/os.Stderr).
type Status struct {
	Out io.Writer

	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	red    func(a ...interface{}) string
	gray   func(a ...interface{}) string
}

// NewStatus creates a Status writing to out.
func NewStatus(out io.Writer) *Status {
	return &Status{
		Out:    out,
		green:  color.New(color.FgGreen, color.Bold).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		red:    color.New(color.FgRed).SprintFunc(),
		gray:   color.New(color.FgHiBlack).SprintFunc(),
	}
}

// NewPlainStatus creates a Status with colors disabled, for tests and
// non-terminal writers.
func NewPlainStatus(out io.Writer) *Status {
	plain := func(a ...interface{}) string { return fmt.Sprint(a...) }
	return &Status{Out: out, green: plain, yellow: plain, red: plain, gray: plain}
}

// OK prints a green success line.
func (s *Status) OK(format string, args ...interface{}) {
	fmt.Fprintln(s.Out, s.green("✓"), fmt.Sprintf(format, args...))
}

// Warn prints a yellow warning line.
func (s *Status) Warn(format string, args ...interface{}) {
	fmt.Fprintln(s.Out, s.yellow("!"), fmt.Sprintf(format, args...))
}

// Fail prints a red failure line.
func (s *Status) Fail(format string, args ...interface{}) {
	fmt.Fprintln(s.Out, s.red("✗"), fmt.Sprintf(format, args...))
}

// Info prints a dimmed informational line.
func (s *Status) Info(format string, args ...interface{}) {
	fmt.Fprintln(s.Out, s.gray("·"), fmt.Sprintf(format, args...))
}

// Printf writes without any prefix or color.
func (s *Status) Printf(format string, args ...interface{}) {
	fmt.Fprintf(s.Out, format, args...)
}
