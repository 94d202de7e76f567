package errors

import (
	goerrors "errors"

	"github.com/pipe01/jsxcheck/internal/source"
)

type SituatedErr interface {
	Unwrap() error
	At() source.Location
}

// Situate finds the first error in err's chain that knows its location.
func Situate(err error) (SituatedErr, bool) {
	var serr SituatedErr
	if goerrors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}
