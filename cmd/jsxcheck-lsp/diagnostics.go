package main

import (
	"strings"
	"unicode/utf16"

	"github.com/pipe01/jsxcheck/internal/check"
	"github.com/pipe01/jsxcheck/internal/diagnostic"
	"github.com/pipe01/jsxcheck/internal/report"
	"github.com/pipe01/jsxcheck/internal/source"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// toProtocol converts the reported diagnostics of a result into LSP ones.
// content is the checked document, needed to express columns in UTF-16 units.
func toProtocol(res *check.Result, content string, opts report.Options) []protocol.Diagnostic {
	diag := []protocol.Diagnostic{}

	for i := range res.Diagnostics {
		d := &res.Diagnostics[i]
		if !opts.Reports(d) {
			continue
		}

		start := pos(content, d.Location)
		end := start
		end.Character++

		diag = append(diag, protocol.Diagnostic{
			Range: protocol.Range{
				Start: start,
				End:   end,
			},
			Severity: ptr(severity(d.Kind)),
			Code:     &protocol.IntegerOrString{Value: d.Kind.String()},
			Source:   ptr(lsName),
			Message:  message(d),
		})
	}

	return diag
}

func message(d *diagnostic.Diagnostic) string {
	if d.Name == "" && !d.Fragment {
		return d.Message()
	}
	return "'" + d.Subject() + "' " + d.Message()
}

func severity(k diagnostic.Kind) protocol.DiagnosticSeverity {
	if k == diagnostic.UnterminatedTag {
		return protocol.DiagnosticSeverityWarning
	}
	return protocol.DiagnosticSeverityError
}

func ptr[T any](v T) *T {
	return &v
}

// pos converts a location into an LSP position, whose character counts UTF-16
// code units from the start of the line.
func pos(content string, l source.Location) protocol.Position {
	off := l.Offset
	if off > len(content) {
		off = len(content)
	}
	if off < 0 {
		off = 0
	}

	lineStart := strings.LastIndexByte(content[:off], '\n') + 1

	var char uint32
	for _, r := range content[lineStart:off] {
		char += uint32(len(utf16.Encode([]rune{r})))
	}

	return protocol.Position{
		Line:      uint32(l.Line),
		Character: char,
	}
}
