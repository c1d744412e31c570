package catconf

import (
	"fmt"

	"github.com/r-a303931/catconf/internal"
)

// ErrMarkerNotFound reports that the whole input was scanned without finding
// the marker bytes. It matches io.ErrUnexpectedEOF via errors.Is, so "no
// configuration embedded" can be told apart from an I/O failure.
var ErrMarkerNotFound = internal.ErrMarkerNotFound

// OptionsError reports invalid scan options.
type OptionsError string

func (o *OptionsError) Error() string {
	return string(*o)
}

func newOptionsError(format string, a ...interface{}) *OptionsError {
	err := OptionsError(fmt.Sprintf(format, a...))
	return &err
}
