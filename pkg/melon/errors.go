package melon

import (
	"errors"
	"fmt"
)

var (
	ErrBadRIFFTag      = errors.New("missing RIFF tag")
	ErrBadMetaTag      = errors.New("missing META chunk")
	ErrBadPadding      = errors.New("unexpected META padding byte")
	ErrTruncated       = errors.New("truncated container")
	ErrMetadata        = errors.New("malformed metadata")
	ErrMissingFileType = errors.New("metadata has no file_type")
	ErrMatchCount      = errors.New("file_type must occur exactly once in metadata")
	ErrSizeOverflow    = errors.New("patched size does not fit in 32 bits")
)

// FormatError reports a container that violates the expected layout.
// Nothing is written once a FormatError is returned.
type FormatError struct {
	Op  string
	Err error
}

func (e *FormatError) Error() string {
	if e.Op == "" {
		return "melon: " + e.Err.Error()
	}
	return fmt.Sprintf("melon: %s: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErr(op string, err error) error {
	return &FormatError{Op: op, Err: err}
}

func formatErrf(op string, sentinel error, format string, args ...any) error {
	return &FormatError{Op: op, Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}

// IsFormatError reports whether err (or anything it wraps) is a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
