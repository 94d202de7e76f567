package report

import (
	"fmt"
	"io"

	"github.com/pipe01/jsxcheck/internal/check"
	"github.com/pipe01/jsxcheck/internal/diagnostic"
	"github.com/pipe01/jsxcheck/internal/lexer"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const topLevel = "(top level)"

type Count struct {
	Open, Close int
}

func (c Count) Balanced() bool {
	return c.Open == c.Close
}

// Counts tallies opening and closing tags per name. Self-closing tags are not
// counted.
func Counts(tks []lexer.Token) map[string]*Count {
	counts := make(map[string]*Count)

	for _, tk := range tks {
		if !tk.Type.Opens() && !tk.Type.Closes() {
			continue
		}

		name := tk.Name
		if tk.Type.IsFragment() {
			name = diagnostic.FragmentMarker
		}

		c, ok := counts[name]
		if !ok {
			c = &Count{}
			counts[name] = c
		}

		if tk.Type.Opens() {
			c.Open++
		} else {
			c.Close++
		}
	}

	return counts
}

// Counter prints one line per tag name whose opens and closes differ.
func Counter(w io.Writer, res *check.Result, opts Options) error {
	if !opts.ByFunction || res.Extents == nil {
		return writeCounts(w, Counts(res.Tokens), opts, "")
	}

	groups := make(map[string][]lexer.Token)
	order := []string{}

	for _, tk := range res.Tokens {
		fn := res.Extents.Name(tk.Start.Offset)
		if fn == "" {
			fn = topLevel
		}

		if _, ok := groups[fn]; !ok {
			order = append(order, fn)
		}
		groups[fn] = append(groups[fn], tk)
	}

	for _, fn := range order {
		counts := Counts(groups[fn])
		if !hasImbalance(counts, opts) {
			continue
		}

		if _, err := fmt.Fprintf(w, "%s:\n", fn); err != nil {
			return err
		}
		if err := writeCounts(w, counts, opts, "  "); err != nil {
			return err
		}
	}

	return nil
}

func hasImbalance(counts map[string]*Count, opts Options) bool {
	for name, c := range counts {
		if !c.Balanced() && opts.tracks(name) {
			return true
		}
	}
	return false
}

func writeCounts(w io.Writer, counts map[string]*Count, opts Options, indent string) error {
	names := maps.Keys(counts)
	slices.Sort(names)

	for _, name := range names {
		c := counts[name]
		if c.Balanced() || !opts.tracks(name) {
			continue
		}

		if _, err := fmt.Fprintf(w, "%s%s: open=%d, close=%d\n", indent, name, c.Open, c.Close); err != nil {
			return err
		}
	}

	return nil
}
