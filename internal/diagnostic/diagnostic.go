package diagnostic

import (
	"strings"

	"github.com/pipe01/jsxcheck/internal/source"
)

// Kind classifies a balance problem.
type Kind int

const (
	// UnmatchedClose is a closing tag with no corresponding open tag anywhere on the stack.
	UnmatchedClose Kind = iota

	// UnclosedOpen is an open tag never closed by the end of the buffer, or one that was
	// implicitly closed while recovering from a mismatched closing tag.
	UnclosedOpen

	// UnterminatedTag is a malformed tag, or a string, template literal or block comment
	// that prevents lexing the rest of its span.
	UnterminatedTag
)

func (k Kind) String() string {
	switch k {
	case UnmatchedClose:
		return "UnmatchedClose"
	case UnclosedOpen:
		return "UnclosedOpen"
	case UnterminatedTag:
		return "UnterminatedTag"
	}

	return "<unknown>"
}

// FragmentMarker is how nameless fragments are displayed.
const FragmentMarker = "<>"

type Diagnostic struct {
	Kind Kind

	// Name is the tag name, empty for fragments and lexical problems.
	Name     string
	Fragment bool

	// Construct names what was left unterminated when the problem is lexical,
	// e.g. "string literal".
	Construct string

	Location source.Location
	Note     string

	// Fatal is set when lexing stopped at this diagnostic.
	Fatal bool

	// Function is the enclosing top-level declaration, if annotated.
	Function string
}

// Subject is the tag name, the fragment marker or the lexical construct the
// diagnostic is about.
func (d *Diagnostic) Subject() string {
	switch {
	case d.Name != "":
		return d.Name
	case d.Fragment:
		return FragmentMarker
	}

	return d.Construct
}

// Notes returns the note and the function annotation, whichever are present.
func (d *Diagnostic) Notes() []string {
	var notes []string
	if d.Note != "" {
		notes = append(notes, d.Note)
	}
	if d.Function != "" {
		notes = append(notes, "in "+d.Function)
	}
	return notes
}

// Message renders the diagnostic without its kind.
func (d *Diagnostic) Message() string {
	var b strings.Builder

	switch d.Kind {
	case UnmatchedClose:
		b.WriteString("closing tag with no matching open tag")
	case UnclosedOpen:
		b.WriteString("tag is never closed")
	case UnterminatedTag:
		b.WriteString("unterminated " + d.Construct)
	}

	for _, n := range d.Notes() {
		b.WriteString(", ")
		b.WriteString(n)
	}

	return b.String()
}

// Bag collects the diagnostics of one verification pass in emission order.
type Bag struct {
	diagnostics []Diagnostic
}

func (b *Bag) Add(d Diagnostic) {
	b.diagnostics = append(b.diagnostics, d)
}

func (b *Bag) Len() int {
	return len(b.diagnostics)
}

// Truncate drops every diagnostic added after the bag held n of them.
func (b *Bag) Truncate(n int) {
	if n < len(b.diagnostics) {
		b.diagnostics = b.diagnostics[:n]
	}
}

func (b *Bag) Diagnostics() []Diagnostic {
	return b.diagnostics
}
