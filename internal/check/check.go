package check

import (
	"github.com/pipe01/jsxcheck/internal/diagnostic"
	"github.com/pipe01/jsxcheck/internal/extent"
	"github.com/pipe01/jsxcheck/internal/lexer"
	"github.com/pipe01/jsxcheck/internal/verifier"
)

type Options struct {
	// Annotate diagnostics with the enclosing top-level declaration
	Functions bool
}

// Result is everything one verification pass over one buffer produced.
type Result struct {
	File        string
	Tokens      []lexer.Token
	Diagnostics []diagnostic.Diagnostic

	// Entries left open at the end of the buffer, innermost first
	Residual []verifier.Entry

	// Only set when Options.Functions is
	Extents *extent.Index
}

func (r *Result) OK() bool {
	return len(r.Diagnostics) == 0
}

// Run tokenizes and verifies a buffer in a single pass.
func Run(fileName string, file []byte, opts Options) *Result {
	var diags diagnostic.Bag

	l := lexer.New(file, fileName, &diags)
	v := verifier.New(&diags)

	res := &Result{
		File:   fileName,
		Tokens: []lexer.Token{},
	}

	for {
		tk, ok := l.Next()
		if !ok {
			break
		}

		res.Tokens = append(res.Tokens, tk)
		v.Feed(tk)
	}

	res.Residual = v.Finish()
	res.Diagnostics = diags.Diagnostics()

	if opts.Functions {
		res.Extents = extent.Build(file)

		for i := range res.Diagnostics {
			d := &res.Diagnostics[i]
			d.Function = res.Extents.Name(d.Location.Offset)
		}
	}

	return res
}
