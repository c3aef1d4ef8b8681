package dataprocessing

import (
	"bufio"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"incidentcli/internal/errors"
)

const utf8BOM = "\xEF\xBB\xBF"

// naTokens are the cell values read as missing. The list matches the
// conventional defaults of dataframe CSV readers; matching is exact and
// case sensitive.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsNAToken reports whether s is one of the tokens read as missing.
func IsNAToken(s string) bool {
	_, ok := naTokens[s]
	return ok
}

// LoadOptions configures table loading.
type LoadOptions struct {
	// Delimiter separates fields. Zero selects tab for .tsv files and comma
	// otherwise.
	Delimiter rune
}

// LoadCSV reads the delimited file at path into a Table.
func LoadCSV(path string, opts LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("input file %s", path))
		}
		return nil, errors.NewIOError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	delim := opts.Delimiter
	if delim == 0 {
		delim = delimiterFor(path)
	}

	t, err := ReadTable(f, delim)
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}
	return t, nil
}

// ReadTable parses delimited text with a header row. A leading UTF-8 BOM is
// dropped, short rows are padded with missing values and NA tokens become
// empty cells. Duplicate header names get a ".N" suffix.
func ReadTable(r io.Reader, delim rune) (*Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && string(prefix) == utf8BOM {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, errors.NewIOError("failed to skip byte order mark", err)
		}
	}

	reader := csv.NewReader(br)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input has no header row", err)
		}
		return nil, errors.NewParsingError("failed to read header", err)
	}

	t := &Table{Header: dedupeHeader(header)}
	width := len(t.Header)

	for {
		record, err := reader.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError("failed to read record", err)
		}

		if len(record) > width {
			line, _ := reader.FieldPos(0)
			return nil, errors.NewParsingError(
				fmt.Sprintf("line %d: expected %d fields, saw %d", line, width, len(record)), nil)
		}

		row := make([]string, width)
		for i, cell := range record {
			if !IsNAToken(cell) {
				row[i] = cell
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			out[i] = name + "." + strconv.Itoa(n+1)
			continue
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

func delimiterFor(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}
