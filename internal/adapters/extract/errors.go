package extract

import "errors"

// Sentinel kinds for extraction failures.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrTooLarge          = errors.New("input too large")
	ErrDecode            = errors.New("cannot decode input")
)
