package report

import (
	"encoding/json"
	"io"

	"github.com/pipe01/jsxcheck/internal/check"
	"github.com/pipe01/jsxcheck/internal/diagnostic"
)

// JSONDiagnostic is the JSON form of a diagnostic. Line and Column are 1-based.
type JSONDiagnostic struct {
	Kind      string `json:"kind"`
	Name      string `json:"name,omitempty"`
	Fragment  bool   `json:"fragment,omitempty"`
	Construct string `json:"construct,omitempty"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Offset    int    `json:"offset"`
	Note      string `json:"note,omitempty"`
	Function  string `json:"function,omitempty"`
	Fatal     bool   `json:"fatal,omitempty"`
}

type JSONReport struct {
	File        string           `json:"file"`
	Diagnostics []JSONDiagnostic `json:"diagnostics"`

	// Names of the tags left open, innermost first
	OpenAtEnd []string `json:"openAtEnd"`
}

func NewJSONReport(res *check.Result, opts Options) JSONReport {
	out := JSONReport{
		File:        res.File,
		Diagnostics: []JSONDiagnostic{},
		OpenAtEnd:   []string{},
	}

	for i := range res.Diagnostics {
		d := &res.Diagnostics[i]
		if !opts.Reports(d) {
			continue
		}

		out.Diagnostics = append(out.Diagnostics, JSONDiagnostic{
			Kind:      d.Kind.String(),
			Name:      d.Name,
			Fragment:  d.Fragment,
			Construct: d.Construct,
			Line:      d.Location.Line + 1,
			Column:    d.Location.Column + 1,
			Offset:    d.Location.Offset,
			Note:      d.Note,
			Function:  d.Function,
			Fatal:     d.Fatal,
		})
	}

	for _, e := range res.Residual {
		name := e.Name
		if e.IsFragment() {
			name = diagnostic.FragmentMarker
		}

		if opts.tracks(name) {
			out.OpenAtEnd = append(out.OpenAtEnd, name)
		}
	}

	return out
}

// JSON writes the report as a single line of JSON.
func JSON(w io.Writer, res *check.Result, opts Options) error {
	return json.NewEncoder(w).Encode(NewJSONReport(res, opts))
}
