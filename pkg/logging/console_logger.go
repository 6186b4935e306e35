package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ConsoleLogger provides colored console output. Colors are
// only emitted when the output is a terminal.
type ConsoleLogger struct {
	mu      *sync.Mutex
	output  io.Writer
	verbose bool
	fields  map[string]any
	palette palette
}

type palette struct {
	gray, blue, yellow, red, cyan *color.Color
}

func newPalette(colored bool) palette {
	mk := func(attr color.Attribute) *color.Color {
		c := color.New(attr)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		gray:   mk(color.FgHiBlack),
		blue:   mk(color.FgBlue),
		yellow: mk(color.FgYellow),
		red:    mk(color.FgRed),
		cyan:   mk(color.FgCyan),
	}
}

// NewConsoleLogger creates a console logger writing to w (stderr
// when nil). When verbose is true, debug messages are emitted.
func NewConsoleLogger(w io.Writer, verbose bool) *ConsoleLogger {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleLogger{
		mu:      &sync.Mutex{},
		output:  w,
		verbose: verbose,
		fields:  make(map[string]any),
		palette: newPalette(isTerminal(w)),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) ||
		isatty.IsCygwinTerminal(f.Fd())
}

func (c *ConsoleLogger) log(
	level LogLevel, lc *color.Color, msg string, fields ...Field,
) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := time.Now().Format("15:04:05")

	merged := make(map[string]any, len(c.fields)+len(fields))
	for k, v := range c.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}

	var fieldStr string
	if len(merged) > 0 {
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, merged[k]))
		}
		fieldStr = " " + c.palette.gray.Sprintf(
			"{%s}", strings.Join(parts, ", "),
		)
	}

	fmt.Fprintf(
		c.output, "%s [%s] %s%s\n",
		c.palette.gray.Sprint(ts),
		lc.Sprintf("%-5s", level.String()),
		msg, fieldStr,
	)
}

// Info logs an informational message.
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log(LevelInfo, c.palette.blue, msg, fields...)
}

// Warn logs a warning message.
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log(LevelWarn, c.palette.yellow, msg, fields...)
}

// Error logs an error message.
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log(LevelError, c.palette.red, msg, fields...)
}

// Debug logs a debug message only if verbose is enabled.
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	if c.verbose {
		c.log(LevelDebug, c.palette.gray, msg, fields...)
	}
}

// WithFields returns a new Logger with additional default
// fields. The child shares the parent's output lock.
func (c *ConsoleLogger) WithFields(
	fields ...Field,
) Logger {
	newFields := make(map[string]any)
	for k, v := range c.fields {
		newFields[k] = v
	}
	for _, f := range fields {
		newFields[f.Key] = f.Value
	}
	return &ConsoleLogger{
		mu:      c.mu,
		output:  c.output,
		verbose: c.verbose,
		fields:  newFields,
		palette: c.palette,
	}
}

// LogCommand prints a one-line command summary. Output is only
// shown in verbose mode.
func (c *ConsoleLogger) LogCommand(entry CommandLog) {
	fields := []Field{
		IntField("exit_code", entry.ExitCode),
		Int64Field("duration_ms", entry.DurationMs),
	}
	if entry.Test != "" {
		fields = append(fields, StringField("test", entry.Test))
	}
	if entry.TimedOut {
		fields = append(fields, BoolField("timed_out", true))
	}

	name := "command"
	if len(entry.Argv) > 0 {
		name = entry.Argv[0]
	}
	c.log(LevelInfo, c.palette.cyan, "ran "+name, fields...)

	if c.verbose && entry.Output != "" {
		c.log(LevelDebug, c.palette.gray, entry.Output)
	}
}

// Close is a no-op for ConsoleLogger.
func (c *ConsoleLogger) Close() error {
	return nil
}
