// Package report renders the deploy engine's progress and diagnostic
// output: TTY-aware color, warning lines, resolved-library listing,
// and a run summary, in the teacher's output-package idiom.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// ANSI color codes, used only when IsColorEnabled reports true.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// Printer writes progress and diagnostic output to one writer, with
// TTY detection and verbosity cached at construction time.
type Printer struct {
	w       io.Writer
	color   bool
	verbose bool
}

// IsColorEnabled reports whether w should receive ANSI color codes: it
// must be a terminal and NO_COLOR must be unset, mirroring the
// teacher's output.IsColorEnabled check.
func IsColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	type fder interface{ Fd() uintptr }
	f, ok := w.(fder)
	return ok && isatty.IsTerminal(f.Fd())
}

// New builds a Printer writing to w. verbose mirrors the
// VERBOSE-DEPLOY environment variable spec §6 documents.
func New(w io.Writer, verbose bool) *Printer {
	return &Printer{w: w, color: IsColorEnabled(w), verbose: verbose}
}

func (p *Printer) colorize(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + colorReset
}

// Warning prints a non-fatal diagnostic, prefixed "Warning:" per
// spec §7, naming the source/destination pair the caller supplies.
func (p *Printer) Warning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.w, p.colorize(colorYellow, "Warning: "+msg))
}

// Error prints a fatal diagnostic before the engine aborts.
func (p *Printer) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.w, p.colorize(colorRed, "Error: "+msg))
}

// Stage announces the start of one orchestrator stage.
func (p *Printer) Stage(name string) {
	fmt.Fprintln(p.w, p.colorize(colorGreen, "==> "+name))
}

// Verbose prints a trace line only when verbose mode is enabled —
// every resolution step, plugin stage, and UI-module copy per spec §7.
func (p *Printer) Verbose(format string, args ...any) {
	if !p.verbose {
		return
	}
	fmt.Fprintln(p.w, p.colorize(colorGray, fmt.Sprintf(format, args...)))
}

// ResolvedList prints the resolved library paths discovered by the
// transitive walker, one per line, with a humanized byte size when
// known.
func (p *Printer) ResolvedList(paths []string, sizeOf func(string) (int64, bool)) {
	for _, path := range paths {
		if size, ok := sizeOf(path); ok {
			fmt.Fprintf(p.w, "  %s (%s)\n", path, humanize.Bytes(uint64(size)))
			continue
		}
		fmt.Fprintf(p.w, "  %s\n", path)
	}
}
