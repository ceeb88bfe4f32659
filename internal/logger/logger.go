package logger

import (
	"os"
	"strings"

	"github.com/fatih/color" // Import the fatih/color package for colored console output
)

// Colorized printing functions for the installer's log levels.
// They behave like fmt.Printf; callers pass the "[LEVEL]" prefix and trailing newline themselves.

// Info logs informational messages in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs warnings in bright magenta.
// Warnings never stop a run, they only flag something the user may want to look at.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs non-fatal errors in red.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs debug messages in cyan once Init(true) has been called. No-op by default.
var Debug = func(format string, a ...any) {}

// fatalColor prints the single line that explains why a run aborted.
var fatalColor = color.New(color.FgHiRed, color.Bold)

// stepColor prints the "[i/n] label" progress header of a step.
var stepColor = color.New(color.FgCyan, color.Bold)

// Init enables or disables debug logging.
// When enabled, Debug prints cyan messages; otherwise it silently drops them.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}

// Fatal prints one distinctly prefixed line to stderr. It does not exit;
// the caller decides the exit code.
func Fatal(format string, a ...any) {
	_, _ = fatalColor.Fprintf(os.Stderr, "[FATAL] "+format+"\n", a...)
}

// Step prints the progress header for step index of total.
func Step(index, total int, label string) {
	_, _ = stepColor.Printf("[%d/%d] %s\n", index, total, label)
}

// Indent returns s with every line prefixed by two spaces, used when echoing
// captured subprocess output under a log line. The result always ends with a newline.
func Indent(s string) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
