package validation

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Usage error exit code, returned before any report exists.
const ExitUsage = 2

// Printer renders reports, colouring the PASS/FAIL markers when
// writing to a terminal.
type Printer struct {
	out  io.Writer
	pass *color.Color
	fail *color.Color
}

// NewPrinter creates a Printer for w. Colour is enabled only when
// w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{
		out:  w,
		pass: color.New(color.FgGreen, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
	}
	if isTerminal(w) {
		p.pass.EnableColor()
		p.fail.EnableColor()
	} else {
		p.pass.DisableColor()
		p.fail.DisableColor()
	}
	return p
}

// Print writes the report detail lines and returns the exit
// code for it.
func (p *Printer) Print(r *Report) int {
	for _, line := range r.DetailLines() {
		fmt.Fprintln(p.out, p.colorize(line))
	}
	return r.ExitCode()
}

func (p *Printer) colorize(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(trimmed)]
	switch {
	case strings.HasPrefix(trimmed, "[PASS]"):
		return indent + p.pass.Sprint("[PASS]") + trimmed[6:]
	case strings.HasPrefix(trimmed, "[FAIL]"):
		return indent + p.fail.Sprint("[FAIL]") + trimmed[6:]
	}
	return line
}

// Print writes the report to stdout and returns its exit code.
func Print(r *Report) int {
	return NewPrinter(os.Stdout).Print(r)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) ||
		isatty.IsCygwinTerminal(f.Fd())
}
