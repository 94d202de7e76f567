package lexer

import (
	"testing"

	"github.com/pipe01/jsxcheck/internal/diagnostic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// modeAt steps a scanner over src until it reaches offset and returns the mode
// of the rune found there.
func modeAt(t *testing.T, src string, offset int) Mode {
	t.Helper()

	var diags diagnostic.Bag
	s := NewScanner([]byte(src), "test.jsx", &diags)

	for s.byteIndex < offset && !s.EOF() {
		s.Step()
	}
	require.Equal(t, offset, s.byteIndex, "offset falls inside a multi-rune step")

	return s.Mode()
}

func TestScannerModes(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		offset int
		want   ModeKind
	}{
		{"double quoted", `a "x" b`, 3, ModeDoubleQuote},
		{"after double quoted", `a "x" b`, 6, ModeNormal},
		{"escaped single quote", `'it\'s' <`, 5, ModeSingleQuote},
		{"after single quoted", `'it\'s' <`, 8, ModeNormal},
		{"odd backslash run", `"a\\\"b" c`, 6, ModeDoubleQuote},
		{"after odd backslash run", `"a\\\"b" c`, 9, ModeNormal},
		{"even backslash run", `"a\\" c`, 6, ModeNormal},
		{"template literal", "`a${b}c` d", 1, ModeTemplateLiteral},
		{"template expression", "`a${b}c` d", 4, ModeEmbeddedExpression},
		{"back in template", "`a${b}c` d", 6, ModeTemplateLiteral},
		{"after template", "`a${b}c` d", 9, ModeNormal},
		{"line comment", "// x\ny", 3, ModeLineComment},
		{"after line comment", "// x\ny", 5, ModeNormal},
		{"block comment", "/* a */b", 3, ModeBlockComment},
		{"after block comment", "/* a */b", 7, ModeNormal},
		{"quote inside comment", "// it's\nb", 8, ModeNormal},
		{"comment inside string", `"// x" b`, 7, ModeNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, modeAt(t, tt.src, tt.offset).Kind)
		})
	}
}

func TestTemplateExpressionDepth(t *testing.T) {
	src := "`a${ {b} }c` d"

	mode := modeAt(t, src, 4)
	assert.Equal(t, ModeEmbeddedExpression, mode.Kind)
	assert.Equal(t, 1, mode.Depth)

	mode = modeAt(t, src, 6)
	assert.Equal(t, ModeEmbeddedExpression, mode.Kind)
	assert.Equal(t, 2, mode.Depth)

	assert.Equal(t, ModeTemplateLiteral, modeAt(t, src, 10).Kind)
	assert.Equal(t, ModeNormal, modeAt(t, src, 13).Kind)
}

func TestExpressionDepthNeverNegative(t *testing.T) {
	var diags diagnostic.Bag
	s := NewScanner([]byte("}}{"), "", &diags)

	for !s.EOF() {
		s.Step()
	}

	assert.Equal(t, 1, s.exprDepth)
}

func TestLiveModes(t *testing.T) {
	assert.True(t, modeAt(t, `a "x"`, 0).Kind == ModeNormal)

	var diags diagnostic.Bag
	s := NewScanner([]byte(`"x"`), "", &diags)
	s.Step()
	assert.False(t, s.Live())
}

func TestUnterminatedAtEOF(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		construct string
		offset    int
	}{
		{"string", `x = "abc`, "string literal", 4},
		{"block comment", `a /* abc`, "block comment", 2},
		{"template literal", "`abc ${x", "template literal", 0},
		{"string inside template expression", "`${ 'a", "string literal", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lex(tt.src)

			require.Len(t, got.Diags, 1)
			d := got.Diags[0]
			assert.Equal(t, diagnostic.UnterminatedTag, d.Kind)
			assert.Equal(t, tt.construct, d.Construct)
			assert.Equal(t, tt.offset, d.Location.Offset)
			assert.True(t, d.Fatal)
		})
	}
}

func TestStringEndsAtLineBreak(t *testing.T) {
	got := lex("x = 'abc\n<b/>")

	require.Len(t, got.Diags, 1)
	d := got.Diags[0]
	assert.Equal(t, "string literal", d.Construct)
	assert.Equal(t, 4, d.Location.Column)
	assert.False(t, d.Fatal)

	require.Len(t, got.Tokens, 1)
	assert.Equal(t, TokenSelfClose, got.Tokens[0].Type)
	assert.Equal(t, 1, got.Tokens[0].Start.Line)
}

func TestEscapedLineBreak(t *testing.T) {
	got := lex("x = 'a\\\nb'; <i/>")

	assert.Empty(t, got.Diags)
	require.Len(t, got.Tokens, 1)
}

func TestModeKindString(t *testing.T) {
	assert.Equal(t, "Normal", ModeNormal.String())
	assert.Equal(t, "InEmbeddedExpression", ModeEmbeddedExpression.String())
	assert.Equal(t, "InMarkupText", ModeMarkupText.String())
}
