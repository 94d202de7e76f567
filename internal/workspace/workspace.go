package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/pipe01/jsxcheck/internal/check"
	"github.com/pipe01/jsxcheck/internal/source"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jsxcheck.workspace")

var ErrInvalidUTF8 = errors.New("file is not valid UTF-8")

// DecodeError is returned for buffers that are not valid UTF-8.
type DecodeError struct {
	Location source.Location
}

func (e *DecodeError) Unwrap() error {
	return ErrInvalidUTF8
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s at %s", ErrInvalidUTF8, e.Location)
}

func (e *DecodeError) At() source.Location {
	return e.Location
}

type Workspace struct {
	rootPath string
	opts     check.Options

	results map[string]*check.Result
}

func New(rootPath string, opts check.Options) *Workspace {
	return &Workspace{
		rootPath: rootPath,
		opts:     opts,
		results:  make(map[string]*check.Result),
	}
}

// Load reads and verifies a file relative to the workspace root. Results are
// cached for the lifetime of the workspace.
func (w *Workspace) Load(relPath string) (*check.Result, error) {
	fullPath := w.fullPath(relPath)

	if res, ok := w.results[fullPath]; ok {
		return res, nil
	}

	bytes, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return w.LoadWithContents(relPath, bytes)
}

// LoadWithContents verifies contents as if they were the file at relPath,
// replacing any cached result for it.
func (w *Workspace) LoadWithContents(relPath string, contents []byte) (*check.Result, error) {
	fullPath := w.fullPath(relPath)

	if err := validateUTF8(relPath, contents); err != nil {
		delete(w.results, fullPath)
		return nil, fmt.Errorf("decode file: %w", err)
	}

	res := check.Run(relPath, contents, w.opts)
	log.Debugf("checked %q: %d tokens, %d diagnostics", relPath, len(res.Tokens), len(res.Diagnostics))

	w.results[fullPath] = res
	return res, nil
}

// Forget drops the cached result for a file so the next Load reads it again.
func (w *Workspace) Forget(relPath string) {
	delete(w.results, w.fullPath(relPath))
}

func (w *Workspace) fullPath(relPath string) string {
	if filepath.IsAbs(relPath) {
		return filepath.Clean(relPath)
	}
	return filepath.Join(w.rootPath, relPath)
}

func validateUTF8(fileName string, contents []byte) error {
	if utf8.Valid(contents) {
		return nil
	}

	loc := source.Location{File: fileName}

	for loc.Offset < len(contents) {
		r, size := utf8.DecodeRune(contents[loc.Offset:])
		if r == utf8.RuneError && size <= 1 {
			return &DecodeError{Location: loc}
		}

		loc.Offset += size
		switch r {
		case '\n':
			loc.Line++
			loc.Column = 0
		case '\r':
		default:
			loc.Column++
		}
	}

	return nil
}
