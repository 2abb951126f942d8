package sheet

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const prefixSize = 512

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	xmlDecl  = []byte("<?xml")
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// Option configures Open.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger makes Open report format detection details to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open reads the first worksheet of the file at path into a Grid.
//
// The content decides the decoder; the extension is only compared against the
// detected format for logging. Unknown content yields an UnsupportedFormatError,
// a recognized but unreadable file a CorruptFileError.
func Open(path string, opts ...Option) (*Grid, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	prefix, err := readPrefix(path)
	if err != nil {
		return nil, err
	}

	format, ok := Detect(prefix)
	if !ok {
		return nil, &UnsupportedFormatError{Path: path}
	}
	if hint, known := formatFromExt(path); known && hint != format {
		o.logger.Debug("file extension does not match content",
			slog.String("path", path),
			slog.String("extension", filepath.Ext(path)),
			slog.String("detected", string(format)),
		)
	}

	var grid *Grid
	switch format {
	case FormatXLSX:
		grid, err = readXLSX(path)
	case FormatXMLSS:
		grid, err = readXMLSS(path)
	case FormatXLS:
		grid, err = readXLS(path)
	}
	if err != nil {
		return nil, corrupt(path, format, err)
	}

	grid.Format = format
	return grid, nil
}

// Detect reports the spreadsheet encoding a file prefix belongs to.
// The checks run in a fixed order: zip container, XML declaration, OLE2 compound file.
func Detect(prefix []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(prefix, zipMagic):
		return FormatXLSX, true
	case isXMLPrefix(prefix):
		return FormatXMLSS, true
	case bytes.HasPrefix(prefix, oleMagic):
		return FormatXLS, true
	default:
		return "", false
	}
}

func isXMLPrefix(prefix []byte) bool {
	prefix = bytes.TrimPrefix(prefix, utf8BOM)
	prefix = bytes.TrimLeft(prefix, " \t\r\n")
	return bytes.HasPrefix(prefix, xmlDecl)
}

func readPrefix(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	buf := make([]byte, prefixSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("reading spreadsheet header: %w", err)
	}
	return buf[:n], nil
}

func formatFromExt(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, true
	case ".xls":
		return FormatXLS, true
	case ".xml":
		return FormatXMLSS, true
	default:
		return "", false
	}
}
