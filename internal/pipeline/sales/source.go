package sales

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

const (
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeXLS  = "application/vnd.ms-excel"
	MimeCSV  = "text/csv"
)

// AllowedMimeTypes lists the content types accepted for upload.
var AllowedMimeTypes = []string{MimeXLSX, MimeXLS, MimeCSV}

var (
	// ErrUnsupportedFileType is returned when an upload is neither a
	// spreadsheet nor delimited text.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrNoValidRows is the batch-level failure returned when every row of an
	// upload was rejected.
	ErrNoValidRows = errors.New("no valid rows; check required columns: Grand Total, Minggu, Tanggal, Produk, Customer, Omzet (Nett)")
)

// DecodeError reports a file that could not be read at all.
type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.File, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Source is an uploaded file resolved to one of its concrete formats:
// CSVSource or SpreadsheetSource.
type Source interface {
	Name() string
	Bytes() []byte
	isSource()
}

// CSVSource holds delimited text.
type CSVSource struct {
	Filename string
	Data     []byte
}

func (s CSVSource) Name() string  { return s.Filename }
func (s CSVSource) Bytes() []byte { return s.Data }
func (CSVSource) isSource()       {}

// SpreadsheetSource holds an OOXML workbook.
type SpreadsheetSource struct {
	Filename string
	Data     []byte
}

func (s SpreadsheetSource) Name() string  { return s.Filename }
func (s SpreadsheetSource) Bytes() []byte { return s.Data }
func (SpreadsheetSource) isSource()       {}

// NewSource resolves the declared content type (falling back to the file
// extension for generic types) into a Source.
func NewSource(filename, contentType string, data []byte) (Source, error) {
	mediaType := normalizeMediaType(contentType)
	ext := strings.ToLower(filepath.Ext(filename))

	switch mediaType {
	case MimeCSV:
		return CSVSource{Filename: filename, Data: data}, nil
	case MimeXLSX:
		return SpreadsheetSource{Filename: filename, Data: data}, nil
	case MimeXLS:
		// Windows browsers report .csv files as vnd.ms-excel.
		if ext == ".csv" {
			return CSVSource{Filename: filename, Data: data}, nil
		}
		return SpreadsheetSource{Filename: filename, Data: data}, nil
	case "", "application/octet-stream":
		return sourceFromExtension(filename, ext, contentType, data)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
}

// MimeTypeForExtension maps a file extension to the content type NewSource
// expects, for callers that read files from disk.
func MimeTypeForExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return MimeCSV
	case ".xlsx":
		return MimeXLSX
	case ".xls":
		return MimeXLS
	}
	return ""
}

func sourceFromExtension(filename, ext, contentType string, data []byte) (Source, error) {
	switch ext {
	case ".csv":
		return CSVSource{Filename: filename, Data: data}, nil
	case ".xlsx", ".xls":
		return SpreadsheetSource{Filename: filename, Data: data}, nil
	}
	if contentType == "" {
		contentType = "unknown"
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
}

func normalizeMediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return strings.ToLower(mediaType)
}
