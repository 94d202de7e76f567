package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pipe01/jsxcheck/internal/check"
	"github.com/pipe01/jsxcheck/internal/diagnostic"
)

type styles struct {
	enabled bool

	kinds   map[diagnostic.Kind]lipgloss.Style
	subject lipgloss.Style
}

func newStyles(w io.Writer, enabled bool) *styles {
	s := &styles{enabled: enabled}
	if !enabled {
		return s
	}

	r := lipgloss.NewRenderer(w)

	s.kinds = map[diagnostic.Kind]lipgloss.Style{
		diagnostic.UnmatchedClose:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		diagnostic.UnclosedOpen:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		diagnostic.UnterminatedTag: r.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
	}
	s.subject = r.NewStyle().Foreground(lipgloss.Color("14"))

	return s
}

func (s *styles) kind(k diagnostic.Kind) string {
	if !s.enabled {
		return k.String()
	}
	return s.kinds[k].Render(k.String())
}

func (s *styles) name(name string) string {
	if !s.enabled {
		return name
	}
	return s.subject.Render(name)
}

// Line formats a single diagnostic the way precise mode prints it, without
// styling.
func Line(d *diagnostic.Diagnostic) string {
	return formatLine(d, &styles{})
}

func formatLine(d *diagnostic.Diagnostic, st *styles) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s '%s' at line %d, column %d",
		st.kind(d.Kind), st.name(d.Subject()), d.Location.Line+1, d.Location.Column+1)

	for _, n := range d.Notes() {
		b.WriteString(", ")
		b.WriteString(n)
	}

	return b.String()
}

// Precise prints every diagnostic with its position, then the tags left open.
func Precise(w io.Writer, res *check.Result, opts Options) error {
	st := newStyles(w, opts.Color)

	for i := range res.Diagnostics {
		d := &res.Diagnostics[i]
		if !opts.Reports(d) {
			continue
		}

		if _, err := fmt.Fprintln(w, formatLine(d, st)); err != nil {
			return err
		}
	}

	open := []string{}
	for _, e := range res.Residual {
		name := e.Name
		if e.IsFragment() {
			name = diagnostic.FragmentMarker
		}

		if opts.tracks(name) {
			open = append(open, name)
		}
	}

	if _, err := fmt.Fprintf(w, "Open tags at end: %d\n", len(open)); err != nil {
		return err
	}

	for _, name := range open {
		if name != diagnostic.FragmentMarker {
			name = "<" + name + ">"
		}

		if _, err := fmt.Fprintf(w, "  %s\n", name); err != nil {
			return err
		}
	}

	return nil
}
