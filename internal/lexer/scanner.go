package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/pipe01/jsxcheck/internal/diagnostic"
	"github.com/pipe01/jsxcheck/internal/source"
)

type ModeKind int

const (
	ModeNormal ModeKind = iota
	ModeSingleQuote
	ModeDoubleQuote
	ModeTemplateLiteral
	ModeLineComment
	ModeBlockComment
	ModeEmbeddedExpression

	// Text children of an open element
	ModeMarkupText
)

func (k ModeKind) String() string {
	switch k {
	case ModeNormal:
		return "Normal"
	case ModeSingleQuote:
		return "InSingleQuoteString"
	case ModeDoubleQuote:
		return "InDoubleQuoteString"
	case ModeTemplateLiteral:
		return "InTemplateLiteral"
	case ModeLineComment:
		return "InLineComment"
	case ModeBlockComment:
		return "InBlockComment"
	case ModeEmbeddedExpression:
		return "InEmbeddedExpression"
	case ModeMarkupText:
		return "InMarkupText"
	}

	return "<unknown>"
}

type Mode struct {
	Kind ModeKind

	// Brace depth, only used by ModeEmbeddedExpression
	Depth int

	start source.Location

	// Element whose children are being scanned, only used by ModeMarkupText
	name     string
	fragment bool

	// Set on the expression of a tag attribute, which markup levels never
	// cross
	attribute bool
}

// Words after which a '<' starts an expression instead of comparing.
var expressionKeywords = map[string]struct{}{
	"return":  {},
	"yield":   {},
	"await":   {},
	"case":    {},
	"default": {},
	"else":    {},
	"do":      {},
	"typeof":  {},
	"void":    {},
	"delete":  {},
	"throw":   {},
	"in":      {},
	"of":      {},
}

type state struct {
	byteIndex int
	line, col int
}

// Scanner walks a buffer once and keeps track of the lexical context of the
// current position, so that only live code is ever considered for tags.
type Scanner struct {
	filename string
	file     []byte

	state

	// Non-base modes, innermost last. The base mode is ModeNormal.
	modes []Mode

	// Brace depth of base mode code
	exprDepth int

	// Last significant live code rune and the identifier it ended, if any
	prev   rune
	word   []rune
	inWord bool

	diags    *diagnostic.Bag
	finished bool
}

func NewScanner(file []byte, fileName string, diags *diagnostic.Bag) *Scanner {
	return &Scanner{
		filename: fileName,
		file:     file,
		diags:    diags,
		modes:    make([]Mode, 0, 4),
	}
}

func (s *Scanner) location() source.Location {
	return source.Location{
		File:   s.filename,
		Offset: s.byteIndex,
		Line:   s.line,
		Column: s.col,
	}
}

func (s *Scanner) take() (r rune, eof bool) {
	if s.byteIndex >= len(s.file) {
		return 0, true
	}

	r, size := utf8.DecodeRune(s.file[s.byteIndex:])
	s.byteIndex += size

	switch r {
	case '\n':
		s.line++
		s.col = 0
	case '\r':
	default:
		s.col++
	}

	return r, false
}

func (s *Scanner) peek() (r rune, eof bool) {
	if s.byteIndex >= len(s.file) {
		return 0, true
	}

	r, _ = utf8.DecodeRune(s.file[s.byteIndex:])
	return r, false
}

func (s *Scanner) peekByte() byte {
	if s.byteIndex >= len(s.file) {
		return 0
	}
	return s.file[s.byteIndex]
}

func (s *Scanner) takeWhitespace() {
	for {
		r, eof := s.peek()
		if eof || !unicode.IsSpace(r) {
			return
		}
		s.take()
	}
}

// EOF reports whether the whole buffer has been consumed.
func (s *Scanner) EOF() bool {
	return s.byteIndex >= len(s.file)
}

// Mode returns the lexical context of the next rune.
func (s *Scanner) Mode() Mode {
	if n := len(s.modes); n > 0 {
		return s.modes[n-1]
	}
	return Mode{Kind: ModeNormal}
}

// Live reports whether the next rune is code or markup, as opposed to string or
// comment contents.
func (s *Scanner) Live() bool {
	switch s.Mode().Kind {
	case ModeNormal, ModeEmbeddedExpression, ModeMarkupText:
		return true
	}
	return false
}

func (s *Scanner) push(kind ModeKind, start source.Location) {
	s.modes = append(s.modes, Mode{
		Kind:  kind,
		Depth: 1,
		start: start,
	})
}

func (s *Scanner) pop() {
	s.modes = s.modes[:len(s.modes)-1]
}

// Step consumes one rune (two for comment delimiters) and applies the mode
// transition it causes. It returns the mode the rune was read in.
func (s *Scanner) Step() ModeKind {
	start := s.location()
	mode := s.Mode()

	r, eof := s.take()
	if eof {
		return mode.Kind
	}

	switch mode.Kind {
	case ModeNormal, ModeEmbeddedExpression:
		s.stepCode(r, start)

	case ModeMarkupText:
		switch r {
		case '{':
			s.push(ModeEmbeddedExpression, start)
			s.significant(r)
		case '}':
			s.closeMarkupBrace()
		}

	case ModeSingleQuote, ModeDoubleQuote:
		s.stepQuoted(r, mode)

	case ModeTemplateLiteral:
		switch {
		case r == '\\':
			s.take()
		case r == '`':
			s.pop()
			s.significant(r)
		case r == '$' && s.peekByte() == '{':
			s.take()
			s.push(ModeEmbeddedExpression, start)
			s.significant('{')
		}

	case ModeLineComment:
		if r == '\n' {
			s.pop()
		}

	case ModeBlockComment:
		if r == '*' && s.peekByte() == '/' {
			s.take()
			s.pop()
		}
	}

	return mode.Kind
}

func (s *Scanner) stepCode(r rune, start source.Location) {
	switch r {
	case '"':
		s.push(ModeDoubleQuote, start)
		return
	case '\'':
		s.push(ModeSingleQuote, start)
		return
	case '`':
		s.push(ModeTemplateLiteral, start)
		return

	case '/':
		switch s.peekByte() {
		case '/':
			s.take()
			s.push(ModeLineComment, start)
			return
		case '*':
			s.take()
			s.push(ModeBlockComment, start)
			return
		}

	case '{':
		if n := len(s.modes); n > 0 {
			s.modes[n-1].Depth++
		} else {
			s.exprDepth++
		}

	case '}':
		s.closeBrace()
		return
	}

	s.significant(r)
}

// closeBrace ends one level of the innermost expression. Once an embedded
// expression is closed the enclosing template literal, element text or tag
// attribute list carries on.
func (s *Scanner) closeBrace() {
	if n := len(s.modes); n > 0 {
		s.modes[n-1].Depth--
		if s.modes[n-1].Depth == 0 {
			s.pop()
		}
	} else if s.exprDepth > 0 {
		s.exprDepth--
	}

	s.significant('}')
}

// closeMarkupBrace handles a '}' found in element text. Any element still open
// there was opened inside the expression the brace closes, so its text ends
// along with the expression.
func (s *Scanner) closeMarkupBrace() {
	i := len(s.modes) - 1
	for i >= 0 && s.modes[i].Kind == ModeMarkupText {
		i--
	}

	switch {
	case i >= 0 && s.modes[i].Kind == ModeEmbeddedExpression:
		s.modes = s.modes[:i+1]
		s.closeBrace()

	case i < 0 && s.exprDepth > 0:
		s.modes = s.modes[:0]
		s.closeBrace()
	}
}

func (s *Scanner) stepQuoted(r rune, mode Mode) {
	quote := '\''
	if mode.Kind == ModeDoubleQuote {
		quote = '"'
	}

	switch r {
	case '\\':
		// Whatever follows is escaped, including a line break
		s.take()

	case quote:
		s.pop()
		s.significant(r)

	case '\n':
		s.pop()
		s.diags.Add(diagnostic.Diagnostic{
			Kind:      diagnostic.UnterminatedTag,
			Construct: "string literal",
			Location:  mode.start,
			Note:      "string ends at a line break",
		})
	}
}

func (s *Scanner) significant(r rune) {
	if unicode.IsSpace(r) {
		s.inWord = false
		return
	}

	if isIdentChar(r) {
		if !s.inWord {
			s.word = s.word[:0]
		}
		s.word = append(s.word, r)
		s.inWord = true
	} else {
		s.inWord = false
	}

	s.prev = r
}

// afterOperand reports whether the last significant code ends an operand, in
// which case a following '<' compares instead of opening a tag.
func (s *Scanner) afterOperand() bool {
	switch s.prev {
	case ')', ']', '"', '\'', '`':
		return true
	}

	if isIdentChar(s.prev) {
		_, isKeyword := expressionKeywords[string(s.word)]
		return !isKeyword
	}

	return false
}

// enterMarkup starts the text children of an element that was just opened.
func (s *Scanner) enterMarkup(tk Token) {
	s.modes = append(s.modes, Mode{
		Kind:     ModeMarkupText,
		start:    tk.Start,
		name:     tk.Name,
		fragment: tk.Type == TokenFragmentOpen,
	})
}

// leaveMarkup ends the element a closing tag closes, recovering past unclosed
// children the same way the balance verifier does. Unmatched closes leave the
// modes untouched. The search never leaves the innermost tag attribute or
// template literal.
func (s *Scanner) leaveMarkup(tk Token) {
	for i := len(s.modes) - 1; i >= 0; i-- {
		m := &s.modes[i]

		switch {
		case m.Kind == ModeMarkupText:
			if tk.Type == TokenFragmentClose {
				if m.fragment {
					s.modes = s.modes[:i]
				}
				return
			}

			if !m.fragment && m.name == tk.Name {
				s.modes = s.modes[:i]
				return
			}

		case m.Kind == ModeEmbeddedExpression && !m.attribute:

		default:
			return
		}
	}
}

// finish reports the innermost construct still open at the end of the buffer.
func (s *Scanner) finish() {
	if s.finished {
		return
	}
	s.finished = true

	for i := len(s.modes) - 1; i >= 0; i-- {
		var construct string

		switch s.modes[i].Kind {
		case ModeSingleQuote, ModeDoubleQuote:
			construct = "string literal"
		case ModeTemplateLiteral:
			construct = "template literal"
		case ModeBlockComment:
			construct = "block comment"
		default:
			continue
		}

		s.diags.Add(diagnostic.Diagnostic{
			Kind:      diagnostic.UnterminatedTag,
			Construct: construct,
			Location:  s.modes[i].start,
			Note:      "reached end of file",
			Fatal:     true,
		})
		return
	}
}

func isIdentChar(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isNameChar(r rune) bool {
	return isNameStart(r) || (r >= '0' && r <= '9') || r == '.'
}
