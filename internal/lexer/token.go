package lexer

import (
	"fmt"

	"github.com/pipe01/jsxcheck/internal/source"
)

type TokenType int

const (
	TokenOpen TokenType = iota
	TokenClose
	TokenSelfClose
	TokenFragmentOpen
	TokenFragmentClose
)

func (t TokenType) String() string {
	switch t {
	case TokenOpen:
		return "Open"
	case TokenClose:
		return "Close"
	case TokenSelfClose:
		return "SelfClose"
	case TokenFragmentOpen:
		return "FragmentOpen"
	case TokenFragmentClose:
		return "FragmentClose"
	}

	return "<unknown>"
}

// Opens reports whether tokens of this type push onto the balance stack.
func (t TokenType) Opens() bool {
	return t == TokenOpen || t == TokenFragmentOpen
}

// Closes reports whether tokens of this type pop from the balance stack.
func (t TokenType) Closes() bool {
	return t == TokenClose || t == TokenFragmentClose
}

func (t TokenType) IsFragment() bool {
	return t == TokenFragmentOpen || t == TokenFragmentClose
}

type Token struct {
	Type TokenType

	// Empty for fragments
	Name string

	Start source.Location

	// Byte offset one past the closing '>'
	End int
}

func (t Token) String() string {
	switch t.Type {
	case TokenOpen:
		return fmt.Sprintf("<%s>", t.Name)
	case TokenClose:
		return fmt.Sprintf("</%s>", t.Name)
	case TokenSelfClose:
		return fmt.Sprintf("<%s />", t.Name)
	case TokenFragmentOpen:
		return "<>"
	case TokenFragmentClose:
		return "</>"
	}

	return "<unknown>"
}
