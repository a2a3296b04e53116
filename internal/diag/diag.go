// Package diag implements Patakha's shared diagnostic sink: an ordered
// buffer of diagnostic records passed by reference through the compiler
// pipeline (spec.md §7, §9 "Error sink"). Stages never throw for expected
// errors; they append to a Sink and keep going where it is safe to do so.
package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/patakha-lang/patakha/internal/token"
)

// Severity classifies a diagnostic (spec.md §6).
type Severity int

const (
	Error Severity = iota
	Warning
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

var severityColor = map[Severity]*color.Color{
	Error:   color.New(color.FgRed, color.Bold),
	Warning: color.New(color.FgYellow),
	Note:    color.New(color.FgCyan),
}

// Diagnostic is a single compiler message with position, severity, and an
// optional nag-line (GLOSSARY: "an optional human-friendly supplementary
// message attached to a diagnostic").
type Diagnostic struct {
	Severity Severity
	Pos      token.Position
	Message  string
	NagLine  string
	Stage    string // non-empty for internal-compiler-error diagnostics
	seq      int    // insertion order, used as ordering tiebreaker
}

// Sink accumulates diagnostics across every pipeline stage. A Sink is passed
// by reference (pointer) so every stage shares one ordered buffer.
type Sink struct {
	diags []Diagnostic
	next  int
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink { return &Sink{} }

func (s *Sink) add(d Diagnostic) {
	d.seq = s.next
	s.next++
	s.diags = append(s.diags, d)
}

// Errorf records an error-severity diagnostic.
func (s *Sink) Errorf(pos token.Position, format string, args ...any) {
	s.add(Diagnostic{Severity: Error, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Warningf records a warning-severity diagnostic.
func (s *Sink) Warningf(pos token.Position, format string, args ...any) {
	s.add(Diagnostic{Severity: Warning, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Notef records a note-severity diagnostic.
func (s *Sink) Notef(pos token.Position, format string, args ...any) {
	s.add(Diagnostic{Severity: Note, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Nag attaches a nag-line to the most recently added diagnostic.
func (s *Sink) Nag(line string) {
	if len(s.diags) == 0 {
		return
	}
	s.diags[len(s.diags)-1].NagLine = line
}

// Internal records an internal-compiler-error diagnostic for a named stage
// (spec.md §7: "IR/Optimizer: invariant violations are internal bugs").
func (s *Sink) Internal(stage string, err error) {
	s.add(Diagnostic{Severity: Error, Stage: stage, Message: "internal compiler error: " + err.Error()})
}

// HasErrors reports whether any error-severity diagnostic has been recorded.
// A stage may only proceed to the next when this is false (spec.md §7).
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// All returns diagnostics in stable order: by file, then by source offset,
// then by insertion order (spec.md §6).
func (s *Sink) All() []Diagnostic {
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pos.File != b.Pos.File {
			return a.Pos.File < b.Pos.File
		}
		if a.Pos.Offset != b.Pos.Offset {
			return a.Pos.Offset < b.Pos.Offset
		}
		return a.seq < b.seq
	})
	return out
}

// Format renders one diagnostic line: "<path>:<line>:<col>: <severity>: <message>"
// (spec.md §6), optionally trailed by its nag-line, colorized by severity
// (grounded on akashmaji946-go-mix's repl.go per-severity *color.Color vars).
func Format(d Diagnostic, colorize bool) string {
	var b strings.Builder
	if d.Stage != "" {
		fmt.Fprintf(&b, "[%s] ", d.Stage)
	}
	prefix := fmt.Sprintf("%s:%d:%d: ", d.Pos.File, d.Pos.Line, d.Pos.Column)
	sev := d.Severity.String()
	if colorize {
		if c, ok := severityColor[d.Severity]; ok {
			sev = c.Sprint(sev)
		}
	}
	fmt.Fprintf(&b, "%s%s: %s", prefix, sev, d.Message)
	if d.NagLine != "" {
		fmt.Fprintf(&b, " (%s)", d.NagLine)
	}
	return b.String()
}

// WriteAll writes every diagnostic in the sink to w, one per line, honoring
// colorize for terminal-friendly severity coloring.
func (s *Sink) WriteAll(w io.Writer, colorize bool) {
	for _, d := range s.All() {
		fmt.Fprintln(w, Format(d, colorize))
	}
}
