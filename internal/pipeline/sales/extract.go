package sales

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const grandTotalLabel = "grand total"

// RawRow is one data row keyed by the header text as it appeared in the
// file. Number is the 1-based line (CSV) or row (spreadsheet) it came from.
// Values are strings, or time.Time for date-formatted spreadsheet cells.
// Headers holds the file's header cells in column order.
type RawRow struct {
	Number  int
	Headers []string
	Values  map[string]any
}

// Extract decodes the whole source into header-keyed rows. Blank rows and
// "Grand Total" summary rows are skipped. An unreadable file yields a
// *DecodeError and no rows.
func Extract(src Source) ([]RawRow, error) {
	switch s := src.(type) {
	case CSVSource:
		return extractCSV(s)
	case SpreadsheetSource:
		return extractSpreadsheet(s)
	case nil:
		return nil, fmt.Errorf("%w: no source", ErrUnsupportedFileType)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedFileType, src)
}

func extractCSV(src CSVSource) ([]RawRow, error) {
	text, _ := textReader(src.Data)
	buffered := bufio.NewReader(text)

	delimiter, err := sniffDelimiter(buffered)
	if err != nil {
		return nil, &DecodeError{File: src.Filename, Err: err}
	}

	reader := csv.NewReader(buffered)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, &DecodeError{File: src.Filename, Err: fmt.Errorf("read header: %w", err)}
	}
	headers := cleanHeaders(header)

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DecodeError{File: src.Filename, Err: err}
		}

		line, _ := reader.FieldPos(0)
		values := make(map[string]any, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if _, seen := values[h]; seen {
				continue
			}
			if i < len(record) {
				values[h] = record[i]
			} else {
				values[h] = ""
			}
		}

		row := RawRow{Number: line, Headers: headers, Values: values}
		if isBlankRow(row) || isGrandTotalRow(row, headers) {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// sniffDelimiter picks ';' over ',' when the header line only makes sense
// split on semicolons, as in exports from Indonesian-locale Excel.
func sniffDelimiter(r *bufio.Reader) (rune, error) {
	peek, err := r.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, err
	}
	firstLine := peek
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		firstLine = peek[:i]
	}
	if bytes.Count(firstLine, []byte{';'}) > bytes.Count(firstLine, []byte{','}) {
		return ';', nil
	}
	return ',', nil
}

func extractSpreadsheet(src SpreadsheetSource) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(src.Data))
	if err != nil {
		return nil, &DecodeError{File: src.Filename, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{File: src.Filename, Err: errors.New("workbook has no sheets")}
	}
	sheet := sheets[0]

	iter, err := f.Rows(sheet)
	if err != nil {
		return nil, &DecodeError{File: src.Filename, Err: fmt.Errorf("read rows from sheet %s: %w", sheet, err)}
	}
	defer iter.Close()

	dates := newDateCellDetector(f, sheet)

	var (
		headers []string
		rows    []RawRow
		rowNum  int
	)
	for iter.Next() {
		rowNum++
		cells, err := iter.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, &DecodeError{File: src.Filename, Err: fmt.Errorf("read row %d: %w", rowNum, err)}
		}

		if rowNum == 1 {
			headers = cleanHeaders(cells)
			continue
		}

		values := make(map[string]any, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if _, seen := values[h]; seen {
				continue
			}
			if i >= len(cells) {
				values[h] = ""
				continue
			}
			values[h] = dates.value(i+1, rowNum, cells[i])
		}

		row := RawRow{Number: rowNum, Headers: headers, Values: values}
		if isBlankRow(row) || isGrandTotalRow(row, headers) {
			continue
		}
		rows = append(rows, row)
	}
	if err := iter.Error(); err != nil {
		return nil, &DecodeError{File: src.Filename, Err: err}
	}

	return rows, nil
}

// dateCellDetector turns numeric cells with a date number format back into
// time.Time, caching the verdict per style id.
type dateCellDetector struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	styles   map[int]bool
}

func newDateCellDetector(f *excelize.File, sheet string) *dateCellDetector {
	d := &dateCellDetector{f: f, sheet: sheet, styles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

func (d *dateCellDetector) value(col, row int, raw string) any {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial <= 0 {
		return raw
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	styleID, err := d.f.GetCellStyle(d.sheet, cell)
	if err != nil || !d.isDateStyle(styleID) {
		return raw
	}

	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return raw
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (d *dateCellDetector) isDateStyle(styleID int) bool {
	if isDate, ok := d.styles[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := d.f.GetStyle(styleID); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = looksLikeDateFormat(*style.CustomNumFmt)
		} else {
			isDate = builtInDateFormats[style.NumFmt]
		}
	}
	d.styles[styleID] = isDate
	return isDate
}

var builtInDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// looksLikeDateFormat reports whether a number format carries a day or year
// token. Quoted text, bracketed sections, backslash-escaped characters and
// the character following a '_' or '*' padding code are literals.
func looksLikeDateFormat(format string) bool {
	var b strings.Builder
	inQuote, inBracket, literal := false, false, false
	for _, r := range strings.ToLower(format) {
		switch {
		case literal:
			literal = false
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case r == '\\' || r == '_' || r == '*':
			literal = true
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "dy")
}

func cleanHeaders(header []string) []string {
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

func isBlankRow(row RawRow) bool {
	for _, v := range row.Values {
		if !isEmptyCell(v) {
			return false
		}
	}
	return true
}

// isGrandTotalRow spots the pivot summary line distributors append to their
// exports: either only the "Grand Total" column is filled, or the first
// filled cell reads "Grand Total" and everything else on the row is numeric.
func isGrandTotalRow(row RawRow, headers []string) bool {
	var populated []string
	for _, h := range headers {
		v, ok := row.Values[h]
		if !ok || isEmptyCell(v) {
			continue
		}
		populated = append(populated, h)
	}
	if len(populated) == 0 {
		return false
	}

	if len(populated) == 1 && strings.EqualFold(populated[0], grandTotalLabel) {
		return true
	}

	label, ok := row.Values[populated[0]].(string)
	if !ok || !strings.EqualFold(strings.TrimSpace(label), grandTotalLabel) {
		return false
	}
	for _, h := range populated[1:] {
		s, ok := row.Values[h].(string)
		if !ok || !hasDigit(s) || strings.ContainsFunc(s, isLetter) {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isEmptyCell(v any) bool {
	switch c := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(c) == ""
	case time.Time:
		return c.IsZero()
	}
	return false
}
