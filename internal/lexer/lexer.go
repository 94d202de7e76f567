package lexer

import (
	"unicode"

	"github.com/pipe01/jsxcheck/internal/diagnostic"
	"github.com/pipe01/jsxcheck/internal/source"
)

// Lexer extracts tag tokens from the live code found by its Scanner.
type Lexer struct {
	*Scanner

	// Tokens ready to be returned, in source order. A tag is only complete
	// after the tags nested in its attributes have been lexed.
	pending []Token
}

func New(file []byte, fileName string, diags *diagnostic.Bag) *Lexer {
	return &Lexer{
		Scanner: NewScanner(file, fileName, diags),
	}
}

// Next returns the next tag token, or false once the buffer is exhausted.
func (l *Lexer) Next() (Token, bool) {
	for len(l.pending) == 0 && !l.EOF() {
		if l.atTag() {
			l.lexTag()
			continue
		}

		l.Step()
	}

	if len(l.pending) > 0 {
		tk := l.pending[0]
		l.pending = l.pending[1:]
		return tk, true
	}

	l.finish()
	return Token{}, false
}

func (l *Lexer) Collect() []Token {
	tks := []Token{}

	for {
		tk, ok := l.Next()
		if !ok {
			break
		}
		tks = append(tks, tk)
	}

	return tks
}

func (l *Lexer) atTag() bool {
	r, _ := l.peek()
	return r == '<' && l.Live() && l.isTagStart()
}

// isTagStart decides whether the '<' at the current position opens a tag or is
// a comparison operator.
func (l *Lexer) isTagStart() bool {
	idx := l.byteIndex + 1

	for idx < len(l.file) && isSpaceByte(l.file[idx]) {
		idx++
	}
	if idx >= len(l.file) {
		return false
	}

	next := rune(l.file[idx])
	if !isNameStart(next) && next != '/' && next != '>' {
		return false
	}

	if l.Mode().Kind == ModeMarkupText {
		return true
	}
	return !l.afterOperand()
}

// lexTag lexes the tag at the current '<' into pending, along with any tags
// nested in its attributes. It reports whether the tag was well formed.
func (l *Lexer) lexTag() bool {
	saved := l.state
	start := l.location()

	slot := len(l.pending)
	l.pending = append(l.pending, Token{})

	depth := len(l.modes)
	diags := l.diags.Len()

	fail := func(name, note string) bool {
		l.pending = l.pending[:slot]
		l.modes = l.modes[:depth]
		l.diags.Truncate(diags)

		l.malformed(saved, start, name, note)
		return false
	}

	l.take() // '<'
	l.takeWhitespace()

	closing := false
	if r, _ := l.peek(); r == '/' {
		l.take()
		l.takeWhitespace()
		closing = true
	}

	name := l.takeName()

	if closing && name == "" {
		l.takeWhitespace()
		if r, _ := l.peek(); r != '>' {
			return fail("", "closing tag without a name")
		}
	}

	last, ok := l.takeTagBody()
	if !ok {
		return fail(name, "no closing '>'")
	}

	tk := Token{
		Name:  name,
		Start: start,
		End:   l.byteIndex,
	}

	switch {
	case closing && name == "":
		tk.Type = TokenFragmentClose
	case closing:
		tk.Type = TokenClose
	case last == '/':
		tk.Type = TokenSelfClose
	case name == "":
		tk.Type = TokenFragmentOpen
	default:
		tk.Type = TokenOpen
	}

	switch {
	case tk.Type.Opens():
		l.enterMarkup(tk)
	case tk.Type.Closes():
		l.leaveMarkup(tk)
	}

	l.pending[slot] = tk

	l.prev = '>'
	l.inWord = false

	return true
}

// malformed reports a tag that could not be terminated and resumes scanning
// right after its '<'.
func (l *Lexer) malformed(saved state, start source.Location, name, note string) {
	l.diags.Add(diagnostic.Diagnostic{
		Kind:      diagnostic.UnterminatedTag,
		Name:      name,
		Construct: "tag",
		Location:  start,
		Note:      note,
	})

	l.state = saved
	l.take()

	l.prev = '<'
	l.inWord = false
}

func (l *Lexer) takeName() string {
	if r, eof := l.peek(); eof || !isNameStart(r) {
		return ""
	}

	start := l.byteIndex
	for {
		r, eof := l.peek()
		if eof || !isNameChar(r) {
			break
		}
		l.take()
	}

	return string(l.file[start:l.byteIndex])
}

// takeTagBody consumes everything up to and including the '>' that ends the
// tag, returning the last significant rune before it.
func (l *Lexer) takeTagBody() (last rune, ok bool) {
	var quote rune

	for {
		r, eof := l.take()
		if eof {
			return 0, false
		}

		if quote != 0 {
			if r == quote {
				quote = 0
				last = r
			}
			continue
		}

		switch r {
		case '"', '\'':
			quote = r

		case '{':
			if !l.takeAttributeExpression() {
				return 0, false
			}
			last = '}'
			continue

		case '<':
			return 0, false

		case '>':
			return last, true
		}

		if !unicode.IsSpace(r) {
			last = r
		}
	}
}

// takeAttributeExpression scans an attribute expression after its opening
// brace like any other code, so that elements passed as values are lexed too.
func (l *Lexer) takeAttributeExpression() bool {
	depth := len(l.modes)
	start := l.location()
	start.Offset--
	start.Column--

	l.push(ModeEmbeddedExpression, start)
	l.modes[depth].attribute = true
	l.significant('{')

	for len(l.modes) > depth {
		if l.EOF() {
			return false
		}

		if l.atTag() {
			l.lexTag()
			continue
		}

		l.Step()
	}

	return true
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
