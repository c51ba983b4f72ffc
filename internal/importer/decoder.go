package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format declares the container a file was submitted as. The caller picks
// it; the decoder never sniffs content.
type Format string

const (
	FormatDelimited   Format = "delimited"   // comma-separated, quote-escaped text
	FormatSpreadsheet Format = "spreadsheet" // xlsx workbook, first sheet only
	FormatStructured  Format = "structured"  // JSON array of flat objects
)

// Decode-fatal failures. These abort the import before any row is seen.
var (
	ErrTooFewRows = errors.New("file must have a header row and at least one data row")
	ErrNoSheets   = errors.New("workbook contains no sheets")
	ErrNotAnArray = errors.New("root JSON value must be an array of objects")
	ErrEmpty      = errors.New("JSON array contains no elements")
)

// DecodedTable is the uniform tabular shape every container decodes into,
// so the rest of the pipeline never needs to know where the data came from.
// Headers are not required to be unique; duplicates resolve positionally at
// mapping time.
type DecodedTable struct {
	Headers      []string
	Rows         [][]string
	SourceFormat Format
}

// Decode parses raw file bytes according to the declared format.
func Decode(data []byte, format Format) (*DecodedTable, error) {
	switch format {
	case FormatDelimited:
		return decodeDelimited(data)
	case FormatSpreadsheet:
		return decodeSpreadsheet(data)
	case FormatStructured:
		return decodeStructured(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func decodeDelimited(data []byte) (*DecodedTable, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // operator files are routinely ragged

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse delimited file: %w", err)
	}

	// encoding/csv already skips fully empty lines, but a line of bare
	// separators still comes through; drop those too when counting.
	lines := make([][]string, 0, len(records))
	for _, rec := range records {
		if allBlank(rec) {
			continue
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		lines = append(lines, rec)
	}

	if len(lines) < 2 {
		return nil, ErrTooFewRows
	}

	return &DecodedTable{
		Headers:      lines[0],
		Rows:         lines[1:],
		SourceFormat: FormatDelimited,
	}, nil
}

func decodeSpreadsheet(data []byte) (*DecodedTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	sheetRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(sheetRows) < 2 {
		return nil, ErrTooFewRows
	}

	// Row 0 is the header row; only non-blank cells count, and data cells
	// are projected onto those column positions.
	var headers []string
	var columns []int
	for i, cell := range sheetRows[0] {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		headers = append(headers, strings.TrimSpace(cell))
		columns = append(columns, i)
	}
	if len(headers) == 0 {
		return nil, ErrTooFewRows
	}

	var rows [][]string
	for _, sheetRow := range sheetRows[1:] {
		row := make([]string, len(columns))
		for j, col := range columns {
			if col < len(sheetRow) {
				row[j] = strings.TrimSpace(sheetRow[col])
			}
		}
		// Spreadsheets routinely carry trailing blank rows; skip them
		// silently rather than reporting them as errors.
		if allBlank(row) {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrTooFewRows
	}

	return &DecodedTable{
		Headers:      headers,
		Rows:         rows,
		SourceFormat: FormatSpreadsheet,
	}, nil
}

func decodeStructured(data []byte) (*DecodedTable, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, ErrNotAnArray
	}
	if len(elements) == 0 {
		return nil, ErrEmpty
	}

	// Headers are the key set of the first element, in its own order. Go
	// maps do not preserve order, so walk the tokens instead.
	headers, err := objectKeys(elements[0])
	if err != nil {
		return nil, fmt.Errorf("first array element is not a flat object: %w", err)
	}

	rows := make([][]string, 0, len(elements))
	for i, elem := range elements {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(elem, &obj); err != nil {
			return nil, fmt.Errorf("array element %d is not an object: %w", i, err)
		}
		row := make([]string, len(headers))
		for j, key := range headers {
			row[j] = rawCellString(obj[key])
		}
		rows = append(rows, row)
	}

	return &DecodedTable{
		Headers:      headers,
		Rows:         rows,
		SourceFormat: FormatStructured,
	}, nil
}

// objectKeys returns the keys of a JSON object in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected a JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected an object key")
		}
		keys = append(keys, key)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// rawCellString renders a JSON value as cell text. Numbers keep their
// source representation ("10" stays "10", "19.90" stays "19.90"); a missing
// key or null becomes the empty string, which downstream treats as absent.
func rawCellString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return text
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
