package verifier

import (
	"fmt"
	"strings"

	"github.com/pipe01/jsxcheck/internal/diagnostic"
	"github.com/pipe01/jsxcheck/internal/lexer"
	"golang.org/x/net/html/atom"
)

// HTML elements that never have children. Writing them without a trailing
// slash is a common source of unclosed tags.
var voidElements = map[atom.Atom]struct{}{
	atom.Area:   {},
	atom.Base:   {},
	atom.Br:     {},
	atom.Col:    {},
	atom.Embed:  {},
	atom.Hr:     {},
	atom.Img:    {},
	atom.Input:  {},
	atom.Link:   {},
	atom.Meta:   {},
	atom.Param:  {},
	atom.Source: {},
	atom.Track:  {},
	atom.Wbr:    {},
}

type Entry struct {
	// Empty for fragments
	Name string
	Open lexer.Token
}

func (e *Entry) IsFragment() bool {
	return e.Open.Type == lexer.TokenFragmentOpen
}

// Verifier checks that tags are properly nested using a single stack.
type Verifier struct {
	stack []Entry
	diags *diagnostic.Bag
}

func New(diags *diagnostic.Bag) *Verifier {
	return &Verifier{
		stack: make([]Entry, 0, 16),
		diags: diags,
	}
}

// Verify feeds every token and finishes, returning the entries left open.
func Verify(tks []lexer.Token, diags *diagnostic.Bag) []Entry {
	v := New(diags)

	for _, tk := range tks {
		v.Feed(tk)
	}

	return v.Finish()
}

func (v *Verifier) Depth() int {
	return len(v.stack)
}

func (v *Verifier) Feed(tk lexer.Token) {
	switch tk.Type {
	case lexer.TokenOpen, lexer.TokenFragmentOpen:
		v.stack = append(v.stack, Entry{
			Name: tk.Name,
			Open: tk,
		})

	case lexer.TokenClose:
		v.close(tk)

	case lexer.TokenFragmentClose:
		if top := v.top(); top != nil && top.IsFragment() {
			v.stack = v.stack[:len(v.stack)-1]
			return
		}

		v.diags.Add(diagnostic.Diagnostic{
			Kind:     diagnostic.UnmatchedClose,
			Fragment: true,
			Location: tk.Start,
		})
	}
}

func (v *Verifier) top() *Entry {
	if len(v.stack) == 0 {
		return nil
	}
	return &v.stack[len(v.stack)-1]
}

func (v *Verifier) close(tk lexer.Token) {
	if top := v.top(); top != nil && !top.IsFragment() && top.Name == tk.Name {
		v.stack = v.stack[:len(v.stack)-1]
		return
	}

	found := -1
	for i := len(v.stack) - 1; i >= 0; i-- {
		if !v.stack[i].IsFragment() && v.stack[i].Name == tk.Name {
			found = i
			break
		}
	}

	if found < 0 {
		v.diags.Add(diagnostic.Diagnostic{
			Kind:     diagnostic.UnmatchedClose,
			Name:     tk.Name,
			Location: tk.Start,
			Note:     unmatchedNote(v.top()),
		})
		return
	}

	closedBy := fmt.Sprintf("implicitly closed by %s at line %d, column %d",
		tk, tk.Start.Line+1, tk.Start.Column+1)

	for i := len(v.stack) - 1; i > found; i-- {
		v.unclosed(&v.stack[i], closedBy)
	}

	v.stack = v.stack[:found]
}

// Finish reports every entry still open, innermost first, and returns them in
// the same order.
func (v *Verifier) Finish() []Entry {
	residual := make([]Entry, 0, len(v.stack))

	for i := len(v.stack) - 1; i >= 0; i-- {
		v.unclosed(&v.stack[i], "")
		residual = append(residual, v.stack[i])
	}

	v.stack = v.stack[:0]
	return residual
}

func (v *Verifier) unclosed(e *Entry, note string) {
	if isVoidElement(e.Name) {
		hint := fmt.Sprintf("void element, write <%s />", e.Name)
		if note == "" {
			note = hint
		} else {
			note += ", " + hint
		}
	}

	v.diags.Add(diagnostic.Diagnostic{
		Kind:     diagnostic.UnclosedOpen,
		Name:     e.Name,
		Fragment: e.IsFragment(),
		Location: e.Open.Start,
		Note:     note,
	})
}

func unmatchedNote(top *Entry) string {
	if top == nil {
		return "no tag is open"
	}
	if top.IsFragment() {
		return "innermost open tag is " + diagnostic.FragmentMarker
	}
	return fmt.Sprintf("innermost open tag is <%s>", top.Name)
}

func isVoidElement(name string) bool {
	// Components are capitalised or dotted, only intrinsic elements can be void
	if name == "" || strings.ContainsRune(name, '.') || name != strings.ToLower(name) {
		return false
	}

	_, ok := voidElements[atom.Lookup([]byte(name))]
	return ok
}
