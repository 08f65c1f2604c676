// Package export turns a rendered report table into a downloadable document.
package export

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned for extensions with no exporter.
var ErrUnknownFormat = errors.New("export: unknown format")

// Format is a document type keyed by file extension.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts an extension with or without the leading dot.
func ParseFormat(ext string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")))
	switch f {
	case FormatPDF, FormatXLSX, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	}
	return "application/octet-stream"
}
