package verifier

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/pipe01/jsxcheck/internal/diagnostic"
	"github.com/pipe01/jsxcheck/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verified struct {
	Residual []Entry
	Diags    []diagnostic.Diagnostic
}

func verify(src string) verified {
	var diags diagnostic.Bag

	tks := lexer.New([]byte(src), "test.jsx", &diags).Collect()
	residual := Verify(tks, &diags)

	return verified{
		Residual: residual,
		Diags:    diags.Diagnostics(),
	}
}

func (v verified) kinds() []diagnostic.Kind {
	out := []diagnostic.Kind{}
	for _, d := range v.Diags {
		out = append(out, d.Kind)
	}
	return out
}

func TestBalanced(t *testing.T) {
	for _, src := range []string{
		`<div><span></span></div>`,
		`<div/>`,
		`<><div></div></>`,
		`<ul>{items.map(i => <li key={i}>{i}</li>)}</ul>`,
		`a < b && c > d`,
	} {
		t.Run(src, func(t *testing.T) {
			got := verify(src)
			assert.Empty(t, got.Diags)
			assert.Empty(t, got.Residual)
		})
	}
}

func TestRecovery(t *testing.T) {
	got := verify(`<div><span></div>`)

	require.Len(t, got.Diags, 1)
	d := got.Diags[0]
	assert.Equal(t, diagnostic.UnclosedOpen, d.Kind)
	assert.Equal(t, "span", d.Name)
	assert.Equal(t, 5, d.Location.Column)
	assert.Equal(t, "implicitly closed by </div> at line 1, column 12", d.Note)

	assert.Empty(t, got.Residual)
}

func TestUnclosedAtEnd(t *testing.T) {
	got := verify(`<div><div></div>`)

	require.Len(t, got.Diags, 1)
	assert.Equal(t, diagnostic.UnclosedOpen, got.Diags[0].Kind)
	assert.Equal(t, 0, got.Diags[0].Location.Offset)

	require.Len(t, got.Residual, 1)
	assert.Equal(t, "div", got.Residual[0].Name)
	assert.Equal(t, 0, got.Residual[0].Open.Start.Offset)
}

func TestUnclosedInnermostFirst(t *testing.T) {
	got := verify(`<a><b><c>`)

	require.Len(t, got.Diags, 3)
	names := []string{}
	for _, d := range got.Diags {
		assert.Equal(t, diagnostic.UnclosedOpen, d.Kind)
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"c", "b", "a"}, names)

	require.Len(t, got.Residual, 3)
	assert.Equal(t, "c", got.Residual[0].Name)
	assert.Equal(t, "a", got.Residual[2].Name)
}

func TestUnmatchedClose(t *testing.T) {
	got := verify(`<div></span></div>`)

	require.Len(t, got.Diags, 1)
	d := got.Diags[0]
	assert.Equal(t, diagnostic.UnmatchedClose, d.Kind)
	assert.Equal(t, "span", d.Name)
	assert.Equal(t, 5, d.Location.Offset)
	assert.Equal(t, "innermost open tag is <div>", d.Note)
	assert.Empty(t, got.Residual)
}

func TestUnmatchedCloseEmptyStack(t *testing.T) {
	got := verify(`</div>`)

	require.Len(t, got.Diags, 1)
	assert.Equal(t, "no tag is open", got.Diags[0].Note)
}

func TestFragmentCloseDoesNotRecover(t *testing.T) {
	got := verify(`<><div></>`)

	assert.Equal(t, []diagnostic.Kind{
		diagnostic.UnmatchedClose,
		diagnostic.UnclosedOpen,
		diagnostic.UnclosedOpen,
	}, got.kinds())

	assert.True(t, got.Diags[0].Fragment)
	assert.Equal(t, "div", got.Diags[1].Name)
	assert.True(t, got.Diags[2].Fragment)
}

func TestFragmentsActLikeNamedPairs(t *testing.T) {
	for _, tt := range []struct{ fragment, named string }{
		{`<><a></a></>`, `<u><a></a></u>`},
		{`<><a></a>`, `<u><a></a>`},
		{`<a><></a>`, `<a><u></a>`},
	} {
		t.Run(tt.fragment, func(t *testing.T) {
			assert.Equal(t, verify(tt.named).kinds(), verify(tt.fragment).kinds())
		})
	}
}

func TestSelfCloseKeepsDepth(t *testing.T) {
	var diags diagnostic.Bag
	v := New(&diags)

	v.Feed(lexer.Token{Type: lexer.TokenOpen, Name: "div"})
	v.Feed(lexer.Token{Type: lexer.TokenSelfClose, Name: "img"})
	assert.Equal(t, 1, v.Depth())

	v.Feed(lexer.Token{Type: lexer.TokenClose, Name: "div"})
	assert.Equal(t, 0, v.Depth())
	assert.Empty(t, v.Finish())
	assert.Zero(t, diags.Len())
}

func TestVoidElementNote(t *testing.T) {
	got := verify(`<div><br></div>`)

	require.Len(t, got.Diags, 1)
	assert.Equal(t, "br", got.Diags[0].Name)
	assert.Contains(t, got.Diags[0].Note, "implicitly closed by </div>")
	assert.Contains(t, got.Diags[0].Note, "void element, write <br />")

	got = verify(`<Input>`)
	require.Len(t, got.Diags, 1)
	assert.Empty(t, got.Diags[0].Note)
}

func TestUnclosedInsideChildrenExpression(t *testing.T) {
	for _, tt := range []struct{ src, name string }{
		{"<div>{ok && <span>x}</div>;\nconst n = a < b;", "span"},
		{"<div>{ok && <br>}</div>;\nconst n = a < b;", "br"},
		{"<div>{ok && <p><b>x</p>}</div>", "b"},
		{"<ul>{items.map(i => <li>{i})}</ul>", "li"},
	} {
		t.Run(tt.src, func(t *testing.T) {
			got := verify(tt.src)

			require.Equal(t, []diagnostic.Kind{diagnostic.UnclosedOpen}, got.kinds())
			assert.Equal(t, tt.name, got.Diags[0].Name)
			assert.Empty(t, got.Residual)
		})
	}
}

func TestElementAsAttributeValue(t *testing.T) {
	got := verify(`const T = () => <Tooltip content={<span>Don't</span>}>x</Tooltip>;`)
	assert.Empty(t, got.Diags)
	assert.Empty(t, got.Residual)

	got = verify(`const T = () => <Tooltip content={<span>Don't}>x</Tooltip>;`)
	require.Equal(t, []diagnostic.Kind{diagnostic.UnclosedOpen}, got.kinds())
	assert.Equal(t, "span", got.Diags[0].Name)
}

// tree generates random, well nested markup as a list of pieces. Pieces are
// whole tags or text, so that inserting or removing one keeps the rest intact.
type tree struct {
	rnd       *rand.Rand
	names     []string
	fragments bool
}

func (g *tree) element(depth int, out []string) []string {
	if depth > 4 || g.rnd.Intn(4) == 0 {
		return append(out, "<"+g.pick()+" />")
	}

	open, end := "<"+g.pick()+">", ""
	if g.fragments && g.rnd.Intn(5) == 0 {
		open, end = "<>", "</>"
	} else {
		end = "</" + open[1:]
	}

	out = append(out, open)
	for i := g.rnd.Intn(4); i > 0; i-- {
		switch g.rnd.Intn(4) {
		case 0:
			out = append(out, "it's text")
		case 1:
			out = append(out, "{ok && ")
			out = g.element(depth+1, out)
			out = append(out, "}")
			continue
		}
		out = g.element(depth+1, out)
	}
	return append(out, end)
}

func (g *tree) pick() string {
	return g.names[g.rnd.Intn(len(g.names))]
}

func (g *tree) document() []string {
	out := []string{}
	for i := 1 + g.rnd.Intn(3); i > 0; i-- {
		out = g.element(0, out)
	}
	return out
}

var names = []string{"div", "span", "p", "motion.div", "Foo.Bar", "Toast"}

func TestRandomBalanced(t *testing.T) {
	g := &tree{rnd: rand.New(rand.NewSource(1)), names: names, fragments: true}

	for i := 0; i < 200; i++ {
		src := strings.Join(g.document(), "")

		got := verify(src)
		require.Empty(t, got.Diags, src)
		require.Empty(t, got.Residual, src)
	}
}

func TestRandomSpuriousClose(t *testing.T) {
	g := &tree{rnd: rand.New(rand.NewSource(2)), names: names, fragments: true}

	for i := 0; i < 200; i++ {
		pieces := g.document()

		at := g.rnd.Intn(len(pieces) + 1)
		offset := len(strings.Join(pieces[:at], ""))

		pieces = append(pieces[:at], append([]string{"</q>"}, pieces[at:]...)...)
		src := strings.Join(pieces, "")

		got := verify(src)
		require.Len(t, got.Diags, 1, src)
		assert.Equal(t, diagnostic.UnmatchedClose, got.Diags[0].Kind, src)
		assert.Equal(t, "q", got.Diags[0].Name, src)
		assert.Equal(t, offset, got.Diags[0].Location.Offset, src)
	}
}

func TestRandomDeletedClose(t *testing.T) {
	g := &tree{rnd: rand.New(rand.NewSource(3)), names: names}

	for i := 0; i < 200; i++ {
		pieces := g.document()

		closes := []int{}
		for i, p := range pieces {
			if strings.HasPrefix(p, "</") {
				closes = append(closes, i)
			}
		}
		if len(closes) == 0 {
			continue
		}

		at := closes[g.rnd.Intn(len(closes))]
		name := pieces[at][2 : len(pieces[at])-1]
		pieces = append(pieces[:at], pieces[at+1:]...)
		src := strings.Join(pieces, "")

		got := verify(src)
		require.Equal(t, []diagnostic.Kind{diagnostic.UnclosedOpen}, got.kinds(), src)
		assert.Equal(t, name, got.Diags[0].Name, src)
	}
}
