package report

import (
	"fmt"
	"io"

	"github.com/pipe01/jsxcheck/internal/check"
	"github.com/pipe01/jsxcheck/internal/diagnostic"
)

type Mode string

const (
	ModePrecise Mode = "precise"
	ModeCounter Mode = "counter"
	ModeJSON    Mode = "json"
)

var Modes = []string{string(ModePrecise), string(ModeCounter), string(ModeJSON)}

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModePrecise, ModeCounter, ModeJSON:
		return m, nil
	}

	return "", fmt.Errorf("unknown report mode %q", s)
}

type Options struct {
	Mode Mode

	// Only report these tag names, "<>" selects fragments. Empty reports all.
	Track []string

	// Group counters by top-level declaration, needs a result built with
	// check.Options.Functions
	ByFunction bool

	Color bool
}

func (o *Options) tracks(name string) bool {
	if len(o.Track) == 0 {
		return true
	}

	for _, t := range o.Track {
		if t == name {
			return true
		}
	}
	return false
}

// Reports tells whether the tracked-name filter lets a diagnostic through.
// Lexical problems always pass.
func (o *Options) Reports(d *diagnostic.Diagnostic) bool {
	if d.Kind == diagnostic.UnterminatedTag {
		return true
	}
	return o.tracks(d.Subject())
}

// Write renders a result in the selected mode.
func Write(w io.Writer, res *check.Result, opts Options) error {
	switch opts.Mode {
	case ModeCounter:
		return Counter(w, res, opts)
	case ModeJSON:
		return JSON(w, res, opts)
	case ModePrecise, "":
		return Precise(w, res, opts)
	}

	return fmt.Errorf("unknown report mode %q", opts.Mode)
}

// Failed reports whether any diagnostic survives the tracked-name filter.
func Failed(res *check.Result, opts Options) bool {
	for i := range res.Diagnostics {
		if opts.Reports(&res.Diagnostics[i]) {
			return true
		}
	}
	return false
}
