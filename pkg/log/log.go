package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// Output is the primary log destination. All non-structured build output
// goes to stderr so that machine-readable output (e.g. the manifest JSON)
// can be piped from stdout.
var Output io.Writer = os.Stderr

var plainStyle = pterm.Style{}

func plainOutput() bool {
	if viper.GetBool("plain") {
		return true
	}
	f, ok := Output.(*os.File)
	if !ok {
		return true
	}
	return !term.IsTerminal(int(f.Fd()))
}

func log(style pterm.Style, icon string, a ...any) {
	s := fmt.Sprint(a...)
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}

	if plainOutput() {
		fmt.Fprint(Output, icon+s)
		return
	}
	fmt.Fprint(Output, style.Sprint(icon+s))
}

// Debugf prints a message which is only relevant for debugging the build.
// Debug output is enabled via the --verbose flag.
func Debugf(format string, a ...any) {
	Debug(fmt.Sprintf(format, a...))
}

func Debug(a ...any) {
	if !viper.GetBool("verbose") {
		return
	}
	log(pterm.Style{pterm.FgGray}, "", a...)
}

// Infof prints a regular progress message.
func Infof(format string, a ...any) {
	Info(fmt.Sprintf(format, a...))
}

func Info(a ...any) {
	log(plainStyle, "", a...)
}

// Printf prints without any styling, always.
func Printf(format string, a ...any) {
	Print(fmt.Sprintf(format, a...))
}

func Print(a ...any) {
	log(plainStyle, "", a...)
}

// Warnf prints a message about a degraded but non-fatal condition.
func Warnf(format string, a ...any) {
	Warn(fmt.Sprintf(format, a...))
}

func Warn(a ...any) {
	log(pterm.Style{pterm.Bold, pterm.FgYellow}, "⚠ ", a...)
}

// Errorf prints a fatal error message.
func Errorf(format string, a ...any) {
	Error(fmt.Sprintf(format, a...))
}

func Error(a ...any) {
	log(pterm.Style{pterm.Bold, pterm.FgRed}, "✗ ", a...)
}

// Successf prints a message about a successfully completed step.
func Successf(format string, a ...any) {
	Success(fmt.Sprintf(format, a...))
}

func Success(a ...any) {
	log(pterm.Style{pterm.FgGreen}, "✓ ", a...)
}
