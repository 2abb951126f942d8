package sheet

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrCorruptFile       = errors.New("corrupt spreadsheet file")
)

// UnsupportedFormatError is returned when the content matches none of the known encodings.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: content is not an xlsx, xls or xml spreadsheet", e.Path)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// CorruptFileError is returned when a format signature matched but decoding failed.
type CorruptFileError struct {
	Path   string
	Format Format
	Err    error
}

func (e *CorruptFileError) Error() string {
	return fmt.Sprintf("%s: corrupt %s file: %v", e.Path, e.Format, e.Err)
}

func (e *CorruptFileError) Unwrap() error { return e.Err }

func (e *CorruptFileError) Is(target error) bool {
	return target == ErrCorruptFile
}

func corrupt(path string, format Format, err error) error {
	return &CorruptFileError{Path: path, Format: format, Err: err}
}
