// Package progress provides a terminal spinner for long-running network
// retrieval, degrading to plain status lines when stdout is not a terminal.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// TerminalCapabilities describes what the attached terminal supports.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	Width           int
}

// DetectTerminalCapabilities detects terminal features.
// Checks: stdout isatty, NO_COLOR env, RELNOTE_ASCII env, terminal width.
func DetectTerminalCapabilities() TerminalCapabilities {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	noColor := os.Getenv("NO_COLOR") != ""
	forceASCII := os.Getenv("RELNOTE_ASCII") == "1"

	width := 0
	if isTTY {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}

	return TerminalCapabilities{
		IsTTY:           isTTY,
		SupportsColor:   isTTY && !noColor,
		SupportsUnicode: isTTY && !forceASCII,
		Width:           width,
	}
}

// spinnerSet selects the character set: braille dots on Unicode terminals,
// |/-\ elsewhere.
func spinnerSet(caps TerminalCapabilities) int {
	if caps.SupportsUnicode {
		return 14
	}
	return 9
}

// Spinner shows an animated progress indicator on a TTY and falls back to a
// single printed line otherwise. The zero value is unusable; call Start.
type Spinner struct {
	inner *spinner.Spinner
}

// Start begins a spinner with the given message. On non-TTY output the
// message is printed once instead.
func Start(message string) *Spinner {
	caps := DetectTerminalCapabilities()
	if !caps.IsTTY {
		fmt.Fprintln(os.Stderr, message)
		return &Spinner{}
	}

	s := spinner.New(spinner.CharSets[spinnerSet(caps)], 100*time.Millisecond,
		spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	s.Start()
	return &Spinner{inner: s}
}

// Stop ends the spinner. Safe on a non-TTY spinner.
func (s *Spinner) Stop() {
	if s.inner != nil {
		s.inner.Stop()
	}
}
